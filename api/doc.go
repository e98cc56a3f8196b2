// Package api provides HTTP REST API handlers for Money Dash.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id", "layout", "seed"}, all optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get one session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game State:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - GET /api/sessions/{id}/log - Paged message log (?page&limit&order&kind&game)
//
// Commands (POST, answer a CommandResult):
//   - /api/sessions/{id}/roll
//   - /api/sessions/{id}/end-turn
//   - /api/sessions/{id}/trade - {"target": 2}
//   - /api/sessions/{id}/trade/send - {"amount": 30, "message": "..."}
//   - /api/sessions/{id}/trade/accept
//   - /api/sessions/{id}/trade/decline
//   - /api/sessions/{id}/trade/cancel
//   - /api/sessions/{id}/chat - {"text": "..."}
//   - /api/sessions/{id}/rematch
//   - /api/sessions/{id}/restart
//
// Configuration:
//   - GET /api/configs - List rule presets
//   - GET /api/configs/{name} - Get one preset
//   - POST /api/configs - Save a preset
//
// Other:
//   - GET /api/emoji - Shortcut token table
//   - GET /api/health
//   - GET /ws?session=<id> - WebSocket push of snapshots
//
// A command the game rules reject still answers 200 with "accepted": false
// and the notice. After every command that logged something the new
// snapshot is pushed to the session's websocket clients.
//
// Error Handling:
//
// Errors are returned as JSON:
//
//	{"error": "session not found: session not found"}
//
// Unknown sessions and presets answer 404, malformed requests and invalid
// presets 400, anything else 500.
package api
