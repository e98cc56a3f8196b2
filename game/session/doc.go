// Package session provides session management for Money Dash.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the in-memory registry of sessions. Each session owns its own
// GameEngine, so two sessions never share dice, prizes or logs. Sessions
// live only as long as the process.
//
// Session Identifiers:
//
// Generated ids are 8 lowercase hex characters taken from a random UUID.
// Lookups are case-insensitive.
//
// Usage:
//
//	manager := session.NewManager(session.WithLogger(logger))
//
//	// Create a new session on the narrow board
//	sess, err := manager.Create("", rules, engine.WithLayout(engine.LayoutNarrow))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve existing session
//	sess, err = manager.Get(sessionID)
//
// Cleanup:
//
// CleanupExpiredSessions drops sessions idle for longer than the given
// duration. The server runs it on a ticker.
package session
