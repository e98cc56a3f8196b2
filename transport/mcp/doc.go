// Package mcp exposes Money Dash to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request against
// a running API server, and the JSON answer is formatted as plain text. It
// holds no game state of its own.
//
// MCP Tools:
//   - create_session, get_session, list_sessions, delete_session
//   - game_state: Players, money, open money tiles, offer and match state
//   - message_log: Paged message log with emoji display text
//   - roll_dice, end_turn
//   - initiate_trade, send_offer, accept_trade, decline_trade, cancel_trade
//   - send_chat
//   - rematch, restart
//   - list_configs: Rule presets
//   - game_instructions: Full rules
//
// A command the game rejects comes back as a normal result starting with
// "✗ <command> rejected:". Tool errors are reserved for transport failures
// and API errors such as unknown sessions.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// Stdio mode
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode, one JSON-RPC message per POST
//	response := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
