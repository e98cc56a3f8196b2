// Package service is the application layer between the transports and the
// game engine.
//
// GameService exposes every engine command per session, each taking a
// context. Commands on all sessions are serialised behind one mutex, so a
// command's checks and effects are never interleaved with another's.
//
// Every command returns a CommandResult holding the engine outcome, the log
// entries it appended, the transition events derived from the snapshots
// before and after, and the new snapshot. A command the rules reject is
// still a successful call with Accepted set to false; errors are reserved
// for unknown sessions, unavailable presets and malformed requests.
//
// GetLog pages through the message log, newest first by default, with
// optional filters on entry kind and game number.
package service
