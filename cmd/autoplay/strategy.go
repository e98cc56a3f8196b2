package main

import (
	"strings"

	"github.com/wricardo/money-dash/game/engine"
)

// Move is one command for the server: a path under the session and an
// optional JSON body.
type Move struct {
	Path string
	Body interface{}
}

func (m Move) String() string {
	return strings.TrimPrefix(m.Path, "/")
}

// Strategy plays both seats. It only looks at the snapshot, so it can pick
// up a session that is already in progress.
type Strategy struct {
	// TradeEvery makes the current player gift money every n-th turn.
	// Zero never trades.
	TradeEvery int
	// TradeAmount is the gift size; zero keeps the server's default offer.
	TradeAmount int
	// Decline turns every received offer down instead of accepting it.
	Decline bool
	// Rematches is how many rematches to play after a win.
	Rematches int

	tradedTurn   int
	tradedGame   int
	sendRejected bool
}

// Observe records how the server answered a move.
func (s *Strategy) Observe(move Move, accepted bool) {
	if move.Path == "/trade/send" && !accepted {
		s.sendRejected = true
	}
}

// NextMove picks the next command, or reports done when the series is over.
func (s *Strategy) NextMove(state *engine.Snapshot) (move Move, done bool) {
	if state.Offer != nil {
		switch state.Offer.Status {
		case engine.OfferSent:
			if s.Decline || state.Turn.GameOver {
				return Move{Path: "/trade/decline"}, false
			}
			return Move{Path: "/trade/accept"}, false
		case engine.OfferDraft:
			amount := state.Offer.Amount
			if s.TradeAmount > 0 {
				amount = s.TradeAmount
			}
			if state.Turn.GameOver || s.sendRejected || amount > state.Player(state.Offer.From).Money {
				s.sendRejected = false
				return Move{Path: "/trade/cancel"}, false
			}
			return Move{
				Path: "/trade/send",
				Body: map[string]interface{}{"amount": amount, "message": "good luck (thumbsup)"},
			}, false
		}
	}

	if state.Turn.GameOver {
		if s.Rematches > 0 && state.Turn.GameOverReason == engine.ReasonWin && !state.Match.Decided {
			s.Rematches--
			return Move{Path: "/rematch"}, false
		}
		return Move{}, true
	}

	if state.Turn.LastDiceRoll != nil {
		return Move{Path: "/end-turn"}, false
	}

	if s.shouldTrade(state) {
		s.tradedTurn = state.Turn.TurnNumber
		s.tradedGame = state.GameNumber
		return Move{
			Path: "/trade",
			Body: map[string]int{"target": int(state.Turn.CurrentPlayer.Other())},
		}, false
	}

	return Move{Path: "/roll"}, false
}

func (s *Strategy) shouldTrade(state *engine.Snapshot) bool {
	if s.TradeEvery <= 0 || state.Turn.TurnNumber%s.TradeEvery != 0 {
		return false
	}
	if s.tradedTurn == state.Turn.TurnNumber && s.tradedGame == state.GameNumber {
		return false
	}
	amount := s.TradeAmount
	if amount <= 0 {
		amount = 1
	}
	return state.Player(state.Turn.CurrentPlayer).Money >= amount
}
