// Package engine provides the core game logic for Money Dash.
//
// The engine package implements the game mechanics including:
//   - Dice rolls and clamped movement on an N×N board
//   - One-time money squares
//   - Cash trade offers between the two players
//   - Win, bankruptcy and rematch handling
//   - Rule validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. Every command returns an Outcome; rejected
// commands append a notice to the log instead of returning an error. Snapshot
// is the deep-copied state a renderer draws from.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig(),
//		engine.WithLayout(engine.LayoutWide),
//		engine.WithSeed(42),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	out := gameEngine.RollDice()
//	if out.Accepted {
//		gameEngine.EndTurn()
//	}
//	state := gameEngine.Snapshot()
//
// Game Rules:
//
// Players take turns rolling a single die and moving forward. Movement is
// clamped to the last tile, and the first player to reach it wins a bonus.
// Money squares pay out once per game. On their turn a player may offer cash
// to the opponent; a player whose money drops to zero is bankrupt and loses.
package engine
