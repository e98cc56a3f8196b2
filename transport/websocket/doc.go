// Package websocket pushes Money Dash snapshots to renderers.
//
// Architecture:
//
// A central Hub owns every connection. Register, unregister and broadcast
// requests are handled by the hub's Run loop, so the client map is only
// touched from one goroutine. Each client has a read pump (keep-alive only)
// and a write pump (one JSON message per frame, pings every 54s).
//
// Message Protocol:
//
// Outgoing messages are JSON:
//
//	{"session_id": "3f2a9c1b", "event": "state_update",
//	 "state": {...snapshot...},
//	 "entries": [{"seq": 12, "kind": "roll", "text": "Player 1 rolled a 4 (dice)",
//	              "display": "Player 1 rolled a 4 🎲", ...}]}
//
// entries holds the log entries produced by the command, each with its
// emoji-substituted display text. The first message after connecting is a
// state_update carrying the whole log. Other events (session_deleted) use
// the data field. Commands are not accepted over the socket.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	// in an HTTP handler, ?session=<id>
//	hub.ServeWS(w, r, sessionID, snapshot)
//
//	// after a command
//	hub.BroadcastToSession(sessionID, result.State, result.Entries)
package websocket
