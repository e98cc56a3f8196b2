package engine

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// InitiateTrade opens a draft offer from the current player to target.
// Targeting yourself surfaces an offer waiting for your answer, if any.
func (e *GameEngine) InitiateTrade(target PlayerID) Outcome {
	e.begin()
	if e.turn.GameOver {
		return e.reject("initiate_trade", "The game is over. No more trades")
	}
	if !target.Valid() {
		return e.reject("initiate_trade", "Pick a player to trade with")
	}

	current := e.turn.CurrentPlayer
	if target == current {
		if e.offer != nil && e.offer.Status == OfferSent && e.offer.To == current {
			offer := *e.offer
			return e.accept(Outcome{
				Notice: e.player(offer.From).Name + " is offering you $" + strconv.Itoa(offer.Amount),
				Offer:  &offer,
			})
		}
		return e.reject("initiate_trade", "You can't trade with yourself!")
	}

	if e.offer.Active() {
		if e.offer.From == current {
			return e.reject("initiate_trade", "You already have an active trade offer")
		}
		return e.reject("initiate_trade", "A pending offer must be resolved first")
	}

	e.offer = &TradeOffer{
		ID:          e.newOfferID(),
		From:        current,
		To:          target,
		Amount:      e.config.DefaultOffer,
		Status:      OfferDraft,
		CreatedTurn: e.turn.TurnNumber,
	}
	offer := *e.offer
	return e.accept(Outcome{Offer: &offer})
}

// SendOffer finalises the current player's draft and delivers it.
func (e *GameEngine) SendOffer(amount int, message string) Outcome {
	e.begin()
	if e.turn.GameOver {
		return e.reject("send_offer", "The game is over. No more trades")
	}
	if e.offer == nil || e.offer.Status != OfferDraft || e.offer.From != e.turn.CurrentPlayer {
		return e.reject("send_offer", "You have no draft offer to send")
	}
	if amount < e.config.MinOffer {
		return e.reject("send_offer", "The minimum offer is $"+strconv.Itoa(e.config.MinOffer))
	}
	sender := e.player(e.offer.From)
	if amount > sender.Money {
		return e.reject("send_offer", "You have insufficient funds for this trade")
	}

	e.offer.Amount = amount
	e.offer.Message = clip(strings.TrimSpace(message), MaxOfferLength)
	e.offer.Status = OfferSent

	to := e.player(e.offer.To)
	if e.offer.Message != "" {
		e.recordf(KindTrade, sender.ID, "%s offers %s $%d: %q", sender.Name, to.Name, amount, e.offer.Message)
	} else {
		e.recordf(KindTrade, sender.ID, "%s offers %s $%d", sender.Name, to.Name, amount)
	}
	e.logger.Debug("offer sent",
		zap.String("offer", e.offer.ID),
		zap.Int("from", int(sender.ID)),
		zap.Int("amount", amount))

	offer := *e.offer
	return e.accept(Outcome{Offer: &offer})
}

// AcceptTrade accepts the sent offer on behalf of its recipient.
func (e *GameEngine) AcceptTrade() Outcome {
	e.begin()
	if e.turn.GameOver {
		return e.reject("accept_trade", "The game is over. No more trades")
	}
	if e.offer == nil || e.offer.Status != OfferSent {
		return e.reject("accept_trade", "There is no offer to accept")
	}

	offer := *e.offer
	from := e.player(offer.From)
	to := e.player(offer.To)
	e.offer = nil

	if from.Money < offer.Amount {
		e.recordf(KindTrade, from.ID, "%s no longer has $%d. The trade is cancelled (insufficient funds)", from.Name, offer.Amount)
		offer.Status = OfferDeclined
		return e.accept(Outcome{Notice: "Trade cancelled: insufficient funds", Offer: &offer})
	}

	from.Money -= offer.Amount
	to.Money += offer.Amount
	offer.Status = OfferAccepted
	e.recordf(KindTrade, to.ID, "%s accepted $%d from %s (money)", to.Name, offer.Amount, from.Name)
	e.logger.Info("trade accepted",
		zap.String("offer", offer.ID),
		zap.Int("from", int(from.ID)),
		zap.Int("to", int(to.ID)),
		zap.Int("amount", offer.Amount))

	e.checkBankruptcy()
	return e.accept(Outcome{Offer: &offer})
}

// DeclineTrade turns down the sent offer. No money moves.
func (e *GameEngine) DeclineTrade() Outcome {
	e.begin()
	if e.offer == nil || e.offer.Status != OfferSent {
		return e.reject("decline_trade", "There is no offer to decline")
	}

	offer := *e.offer
	e.offer = nil
	offer.Status = OfferDeclined
	e.recordf(KindTrade, offer.To, "%s declined the $%d offer from %s",
		e.player(offer.To).Name, offer.Amount, e.player(offer.From).Name)
	return e.accept(Outcome{Offer: &offer})
}

// CancelTrade discards a draft before it is sent.
func (e *GameEngine) CancelTrade() Outcome {
	e.begin()
	if e.offer == nil || e.offer.Status != OfferDraft {
		return e.reject("cancel_trade", "There is no draft offer to cancel")
	}
	if e.offer.From != e.turn.CurrentPlayer {
		return e.reject("cancel_trade", "Only the sender can cancel a draft offer")
	}
	e.offer = nil
	return e.accept(Outcome{})
}
