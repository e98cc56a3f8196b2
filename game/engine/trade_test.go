package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passTurn rolls a 1 on a prize-free board and ends the turn for the
// current player.
func passTurn(t *testing.T, e *GameEngine) {
	t.Helper()
	e.squares = nil
	e.roller = scripted(1)
	require.True(t, e.RollDice().Accepted)
	require.True(t, e.EndTurn().Accepted)
}

func TestTrade_AcceptScenario(t *testing.T) {
	// Given: a fresh game with player 1 to act
	e := newTestEngine(t)

	// When: player 1 offers player 2 $50 and player 2 accepts
	draft := e.InitiateTrade(Player2)
	require.True(t, draft.Accepted)
	require.NotNil(t, draft.Offer)
	assert.Equal(t, OfferDraft, draft.Offer.Status)
	assert.Equal(t, 50, draft.Offer.Amount)
	assert.Empty(t, draft.Offer.Message)
	assert.NotEmpty(t, draft.Offer.ID)
	assert.Equal(t, 1, draft.Offer.CreatedTurn)

	sent := e.SendOffer(50, "")
	require.True(t, sent.Accepted)
	assert.Equal(t, OfferSent, sent.Offer.Status)

	accepted := e.AcceptTrade()
	require.True(t, accepted.Accepted)
	assert.Equal(t, OfferAccepted, accepted.Offer.Status)

	// Then: money moved, the slot is free and a new offer can start
	s := e.Snapshot()
	assert.Equal(t, 50, s.Players[0].Money)
	assert.Equal(t, 150, s.Players[1].Money)
	assert.Nil(t, s.Offer)
	assert.False(t, s.Turn.GameOver)

	assert.True(t, e.InitiateTrade(Player2).Accepted)
}

func TestTrade_BankruptcyScenario(t *testing.T) {
	// Given: player 2 holds the turn and player 1 has offered everything
	e := newTestEngine(t)
	require.True(t, e.InitiateTrade(Player2).Accepted)
	require.True(t, e.SendOffer(100, "all in").Accepted)
	passTurn(t, e)
	require.Equal(t, Player2, e.CurrentPlayer())

	// When: player 2 accepts
	out := e.AcceptTrade()

	// Then: player 1 is bankrupt and player 2 wins immediately
	require.True(t, out.Accepted)
	s := e.Snapshot()
	assert.Equal(t, 0, s.Players[0].Money)
	assert.True(t, s.Turn.GameOver)
	assert.Equal(t, ReasonBankruptcy, s.Turn.GameOverReason)
	assert.Equal(t, Player2, s.Turn.Winner)

	count := 0
	for _, entry := range out.Entries {
		if entry.Kind == KindBankruptcy {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestInitiateTrade_Guards(t *testing.T) {
	t.Run("cannot trade with yourself", func(t *testing.T) {
		e := newTestEngine(t)

		out := e.InitiateTrade(Player1)

		assert.False(t, out.Accepted)
		assert.Equal(t, "You can't trade with yourself!", out.Notice)
		assert.Nil(t, e.Snapshot().Offer)
	})

	t.Run("unknown target", func(t *testing.T) {
		e := newTestEngine(t)
		assert.False(t, e.InitiateTrade(PlayerID(3)).Accepted)
		assert.False(t, e.InitiateTrade(NoPlayer).Accepted)
	})

	t.Run("own draft blocks a second offer", func(t *testing.T) {
		e := newTestEngine(t)
		require.True(t, e.InitiateTrade(Player2).Accepted)

		out := e.InitiateTrade(Player2)

		assert.False(t, out.Accepted)
		assert.Contains(t, out.Notice, "already have an active trade offer")
	})

	t.Run("own sent offer blocks a second offer", func(t *testing.T) {
		e := newTestEngine(t)
		require.True(t, e.InitiateTrade(Player2).Accepted)
		require.True(t, e.SendOffer(20, "").Accepted)

		out := e.InitiateTrade(Player2)

		assert.False(t, out.Accepted)
		assert.Contains(t, out.Notice, "already have an active trade offer")
	})

	t.Run("other player's pending offer must resolve first", func(t *testing.T) {
		e := newTestEngine(t)
		passTurn(t, e)
		require.True(t, e.InitiateTrade(Player1).Accepted)
		require.True(t, e.SendOffer(20, "").Accepted)
		passTurn(t, e)
		require.Equal(t, Player1, e.CurrentPlayer())

		out := e.InitiateTrade(Player2)

		assert.False(t, out.Accepted)
		assert.Contains(t, out.Notice, "pending offer must be resolved first")
		assert.Equal(t, Player2, e.Snapshot().Offer.From)
	})

	t.Run("targeting yourself surfaces an offer addressed to you", func(t *testing.T) {
		e := newTestEngine(t)
		passTurn(t, e)
		require.True(t, e.InitiateTrade(Player1).Accepted)
		require.True(t, e.SendOffer(30, "for luck").Accepted)
		passTurn(t, e)
		logLen := len(e.GetLog())

		out := e.InitiateTrade(Player1)

		require.True(t, out.Accepted)
		require.NotNil(t, out.Offer)
		assert.Equal(t, OfferSent, out.Offer.Status)
		assert.Equal(t, 30, out.Offer.Amount)
		assert.Equal(t, "for luck", out.Offer.Message)
		assert.Contains(t, out.Notice, "$30")
		assert.Len(t, e.GetLog(), logLen, "surfacing does not log")
	})
}

func TestSendOffer_Validation(t *testing.T) {
	t.Run("no draft", func(t *testing.T) {
		e := newTestEngine(t)
		out := e.SendOffer(20, "")
		assert.False(t, out.Accepted)
	})

	t.Run("below minimum", func(t *testing.T) {
		e := newTestEngine(t)
		require.True(t, e.InitiateTrade(Player2).Accepted)

		out := e.SendOffer(5, "")

		assert.False(t, out.Accepted)
		assert.Contains(t, out.Notice, "$10")
		assert.Equal(t, OfferDraft, e.Snapshot().Offer.Status)
	})

	t.Run("more than the sender has", func(t *testing.T) {
		e := newTestEngine(t)
		require.True(t, e.InitiateTrade(Player2).Accepted)

		out := e.SendOffer(101, "")

		assert.False(t, out.Accepted)
		assert.Contains(t, out.Notice, "insufficient funds")
	})

	t.Run("draft belongs to the other player", func(t *testing.T) {
		e := newTestEngine(t)
		require.True(t, e.InitiateTrade(Player2).Accepted)
		passTurn(t, e)

		out := e.SendOffer(20, "")

		assert.False(t, out.Accepted)
		assert.Equal(t, OfferDraft, e.Snapshot().Offer.Status)
	})

	t.Run("message is trimmed and clipped", func(t *testing.T) {
		e := newTestEngine(t)
		require.True(t, e.InitiateTrade(Player2).Accepted)
		long := "  "
		for i := 0; i < 200; i++ {
			long += "x"
		}

		out := e.SendOffer(10, long)

		require.True(t, out.Accepted)
		assert.Len(t, out.Offer.Message, MaxOfferLength)
	})
}

func TestAcceptTrade(t *testing.T) {
	t.Run("sender can no longer pay", func(t *testing.T) {
		e := newTestEngine(t)
		require.True(t, e.InitiateTrade(Player2).Accepted)
		require.True(t, e.SendOffer(80, "").Accepted)
		e.players[0].Money = 50

		out := e.AcceptTrade()

		require.True(t, out.Accepted)
		assert.Contains(t, out.Notice, "insufficient funds")
		s := e.Snapshot()
		assert.Equal(t, 50, s.Players[0].Money)
		assert.Equal(t, 100, s.Players[1].Money)
		assert.Nil(t, s.Offer)
		assert.False(t, s.Turn.GameOver)
	})

	t.Run("draft cannot be accepted", func(t *testing.T) {
		e := newTestEngine(t)
		require.True(t, e.InitiateTrade(Player2).Accepted)

		assert.False(t, e.AcceptTrade().Accepted)
		assert.NotNil(t, e.Snapshot().Offer)
	})
}

func TestDeclineTrade(t *testing.T) {
	e := newTestEngine(t)
	assert.False(t, e.DeclineTrade().Accepted)

	require.True(t, e.InitiateTrade(Player2).Accepted)
	require.True(t, e.SendOffer(40, "").Accepted)

	out := e.DeclineTrade()

	require.True(t, out.Accepted)
	assert.Equal(t, OfferDeclined, out.Offer.Status)
	s := e.Snapshot()
	assert.Nil(t, s.Offer)
	assert.Equal(t, 100, s.Players[0].Money)
	assert.Equal(t, 100, s.Players[1].Money)
}

func TestCancelTrade(t *testing.T) {
	e := newTestEngine(t)
	assert.False(t, e.CancelTrade().Accepted)

	require.True(t, e.InitiateTrade(Player2).Accepted)
	require.True(t, e.CancelTrade().Accepted)
	assert.Nil(t, e.Snapshot().Offer)

	require.True(t, e.InitiateTrade(Player2).Accepted)
	require.True(t, e.SendOffer(10, "").Accepted)
	assert.False(t, e.CancelTrade().Accepted, "sent offers are answered, not cancelled")
}

func TestCancelTrade_OnlySender(t *testing.T) {
	e := newTestEngine(t)
	e.offer = &TradeOffer{ID: "x", From: Player2, To: Player1, Amount: 50, Status: OfferDraft}

	out := e.CancelTrade()

	assert.False(t, out.Accepted)
	assert.Equal(t, "Only the sender can cancel a draft offer", out.Notice)
	require.NotNil(t, e.Snapshot().Offer)
	assert.Equal(t, Player2, e.Snapshot().Offer.From)
}

func TestEndTurn_WithdrawsUnsentDraft(t *testing.T) {
	// Given: player 1 opened a draft and never sent it
	e := newTestEngine(t)
	require.True(t, e.InitiateTrade(Player2).Accepted)

	// When: player 1 finishes the turn
	passTurn(t, e)

	// Then: the draft is gone and player 2 may trade freely
	s := e.Snapshot()
	assert.Nil(t, s.Offer)
	withdrawn := false
	for _, entry := range s.Log {
		if entry.Kind == KindTrade && strings.Contains(entry.Text, "unsent offer was withdrawn") {
			withdrawn = true
		}
	}
	assert.True(t, withdrawn)

	assert.False(t, e.CancelTrade().Accepted, "nothing left to cancel")
	out := e.InitiateTrade(Player1)
	require.True(t, out.Accepted)
	assert.Equal(t, Player2, out.Offer.From)
}

func TestEndTurn_KeepsSentOffer(t *testing.T) {
	e := newTestEngine(t)
	require.True(t, e.InitiateTrade(Player2).Accepted)
	require.True(t, e.SendOffer(20, "").Accepted)

	passTurn(t, e)

	s := e.Snapshot()
	require.NotNil(t, s.Offer)
	assert.Equal(t, OfferSent, s.Offer.Status)
	assert.True(t, e.AcceptTrade().Accepted)
}

func TestTrade_ClosingAfterGameOver(t *testing.T) {
	e := newTestEngine(t)
	require.True(t, e.InitiateTrade(Player2).Accepted)
	require.True(t, e.SendOffer(10, "").Accepted)
	winGame(t, e)

	assert.False(t, e.AcceptTrade().Accepted)
	assert.True(t, e.DeclineTrade().Accepted)
	assert.Nil(t, e.Snapshot().Offer)
}
