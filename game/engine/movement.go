package engine

import (
	"go.uber.org/zap"
)

// RollDice rolls for the current player, moves the piece and resolves the
// tile it lands on. It does not end the turn.
func (e *GameEngine) RollDice() Outcome {
	e.begin()
	if e.turn.GameOver {
		return e.reject("roll", "The game is over. Start a rematch or restart")
	}
	if e.turn.LastDiceRoll != nil {
		return e.reject("roll", "You already rolled this turn. End your turn first")
	}

	who := e.turn.CurrentPlayer
	p := e.player(who)

	roll := e.roller.Roll(e.board.MaxRoll)
	if roll < 1 {
		roll = 1
	}
	if roll > e.board.MaxRoll {
		roll = e.board.MaxRoll
	}
	e.turn.LastDiceRoll = &roll
	e.recordf(KindRoll, who, "%s rolled a %d (dice)", p.Name, roll)

	from := p.Position
	p.Position = e.clampPosition(from + roll)
	e.recordf(KindMove, who, "%s moved from tile %d to tile %d", p.Name, from, p.Position)

	e.collectAt(p)

	if p.Position >= e.board.WinningTile {
		e.turn.GameOver = true
		e.turn.GameOverReason = ReasonWin
		e.turn.Winner = who
		p.Money += e.config.WinBonus
		e.recordf(KindWin, who, "%s reached the finish and wins $%d bonus! (win)", p.Name, e.config.WinBonus)
		e.logger.Info("game won",
			zap.Int("game", e.gameNumber),
			zap.Int("player", int(who)),
			zap.Int("turn", e.turn.TurnNumber))
	}

	e.checkBankruptcy()

	e.logger.Debug("dice rolled",
		zap.Int("player", int(who)),
		zap.Int("roll", roll),
		zap.Int("from", from),
		zap.Int("to", p.Position))
	return e.accept(Outcome{Roll: roll})
}

// EndTurn hands the turn to the other player
func (e *GameEngine) EndTurn() Outcome {
	e.begin()
	if e.turn.GameOver {
		return e.reject("end_turn", "The game is over")
	}
	if e.turn.LastDiceRoll == nil {
		return e.reject("end_turn", "Roll the dice before ending your turn")
	}

	prev := e.turn.CurrentPlayer
	// an unsent draft does not outlive its sender's turn
	if e.offer != nil && e.offer.Status == OfferDraft && e.offer.From == prev {
		e.offer = nil
		e.recordf(KindTrade, prev, "%s's unsent offer was withdrawn", e.player(prev).Name)
	}
	e.turn.CurrentPlayer = prev.Other()
	e.turn.LastDiceRoll = nil
	e.turn.TurnNumber++
	e.recordf(KindSystem, e.turn.CurrentPlayer, "Turn %d: %s's turn", e.turn.TurnNumber, e.player(e.turn.CurrentPlayer).Name)

	e.checkBankruptcy()
	return e.accept(Outcome{})
}

// clampPosition keeps a position on the board; there is no wraparound.
func (e *GameEngine) clampPosition(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > e.board.WinningTile {
		return e.board.WinningTile
	}
	return pos
}

// collectAt credits an uncollected prize under the player's piece.
func (e *GameEngine) collectAt(p *Player) {
	for i := range e.squares {
		sq := &e.squares[i]
		if sq.Position != p.Position {
			continue
		}
		if sq.Collected {
			return
		}
		sq.Collected = true
		p.Money += sq.Amount
		e.recordf(KindMoney, p.ID, "%s found $%d on tile %d! (money)", p.Name, sq.Amount, sq.Position)
		return
	}
}

// checkBankruptcy ends a live game when a player has run out of money. It
// runs once at the end of each mutating command.
func (e *GameEngine) checkBankruptcy() {
	if e.turn.GameOver {
		return
	}

	broke1 := e.players[0].Money <= 0
	broke2 := e.players[1].Money <= 0
	if !broke1 && !broke2 {
		return
	}

	e.turn.GameOver = true
	e.turn.GameOverReason = ReasonBankruptcy
	switch {
	case broke1 && broke2:
		e.turn.Winner = NoPlayer
		e.record(KindBankruptcy, NoPlayer, "Both players are bankrupt! The game ends in a draw")
	case broke1:
		e.turn.Winner = Player2
		e.recordf(KindBankruptcy, Player1, "%s is bankrupt! %s wins (win)", e.players[0].Name, e.players[1].Name)
	default:
		e.turn.Winner = Player1
		e.recordf(KindBankruptcy, Player2, "%s is bankrupt! %s wins (win)", e.players[1].Name, e.players[0].Name)
	}
	e.logger.Info("game ended by bankruptcy",
		zap.Int("game", e.gameNumber),
		zap.Int("winner", int(e.turn.Winner)))
}
