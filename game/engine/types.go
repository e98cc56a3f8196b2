package engine

import "time"

// PlayerID identifies one of the two seats. Zero means "nobody" (system
// log entries, a drawn game).
type PlayerID int

const (
	NoPlayer PlayerID = 0
	Player1  PlayerID = 1
	Player2  PlayerID = 2
)

// Other returns the opposing seat.
func (p PlayerID) Other() PlayerID {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// Valid reports whether p is a real seat.
func (p PlayerID) Valid() bool {
	return p == Player1 || p == Player2
}

// LayoutMode selects the board size and the die. It is fixed per session.
type LayoutMode string

const (
	LayoutWide   LayoutMode = "wide"
	LayoutNarrow LayoutMode = "narrow"
)

// GameOverReason explains why a game ended.
type GameOverReason string

const (
	ReasonNone       GameOverReason = ""
	ReasonWin        GameOverReason = "win"
	ReasonBankruptcy GameOverReason = "bankruptcy"
)

// OfferStatus is the lifecycle of a trade offer.
type OfferStatus string

const (
	OfferDraft    OfferStatus = "draft"
	OfferSent     OfferStatus = "sent"
	OfferAccepted OfferStatus = "accepted"
	OfferDeclined OfferStatus = "declined"
)

// EntryKind classifies log entries for the renderer.
type EntryKind string

const (
	KindSystem     EntryKind = "system"
	KindRoll       EntryKind = "roll"
	KindMove       EntryKind = "move"
	KindMoney      EntryKind = "money"
	KindWin        EntryKind = "win"
	KindTrade      EntryKind = "trade"
	KindNotice     EntryKind = "notice"
	KindChat       EntryKind = "chat"
	KindBankruptcy EntryKind = "bankruptcy"
)

// Board size and dice constants
const (
	WideBoardSize   = 4
	NarrowBoardSize = 3
	WideMaxRoll     = 6
	NarrowMaxRoll   = 4

	MaxChatLength  = 280
	MaxOfferLength = 140
)

// Player is one seat at the table.
type Player struct {
	ID       PlayerID `json:"id"`
	Name     string   `json:"name"`
	Color    string   `json:"color"`
	Position int      `json:"position"`
	Money    int      `json:"money"`
}

// Board describes the N×N grid.
type Board struct {
	Mode         LayoutMode `json:"mode"`
	Size         int        `json:"size"`
	TotalSquares int        `json:"total_squares"`
	WinningTile  int        `json:"winning_tile"`
	MaxRoll      int        `json:"max_roll"`
}

// MoneySquare is a one-time prize on a tile.
type MoneySquare struct {
	Position  int  `json:"position"`
	Amount    int  `json:"amount"`
	Collected bool `json:"collected"`
}

// TradeOffer is a cash gift proposed by one player to the other.
type TradeOffer struct {
	ID          string      `json:"id"`
	From        PlayerID    `json:"from"`
	To          PlayerID    `json:"to"`
	Amount      int         `json:"amount"`
	Message     string      `json:"message"`
	Status      OfferStatus `json:"status"`
	CreatedTurn int         `json:"created_turn"`
}

// Active reports whether the offer still occupies the single offer slot.
func (o *TradeOffer) Active() bool {
	return o != nil && (o.Status == OfferDraft || o.Status == OfferSent)
}

// TurnState tracks whose turn it is and whether the game has ended.
type TurnState struct {
	CurrentPlayer  PlayerID       `json:"current_player"`
	TurnNumber     int            `json:"turn_number"`
	LastDiceRoll   *int           `json:"last_dice_roll"`
	GameOver       bool           `json:"game_over"`
	GameOverReason GameOverReason `json:"game_over_reason"`
	Winner         PlayerID       `json:"winner"`
}

// MatchResult records the end of a series, decided when a player cannot
// pay the rematch fee.
type MatchResult struct {
	Decided  bool       `json:"decided"`
	Champion PlayerID   `json:"champion"`
	Forfeits []PlayerID `json:"forfeits,omitempty"`
}

// LogEntry is one line of the message log.
type LogEntry struct {
	Seq       int       `json:"seq"`
	Game      int       `json:"game"`
	Turn      int       `json:"turn"`
	Kind      EntryKind `json:"kind"`
	Player    PlayerID  `json:"player"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is the full observable state handed to renderers after every
// command. It never aliases engine memory.
type Snapshot struct {
	GameNumber   int           `json:"game_number"`
	ConfigName   string        `json:"config_name"`
	Players      [2]Player     `json:"players"`
	Board        Board         `json:"board"`
	MoneySquares []MoneySquare `json:"money_squares"`
	Turn         TurnState     `json:"turn"`
	Offer        *TradeOffer   `json:"offer"`
	Match        MatchResult   `json:"match"`
	Log          []LogEntry    `json:"log"`
}

// Player returns the seat with the given id.
func (s *Snapshot) Player(id PlayerID) Player {
	if id == Player2 {
		return s.Players[1]
	}
	return s.Players[0]
}

// Outcome reports what a single command did.
type Outcome struct {
	Accepted bool        `json:"accepted"`
	Notice   string      `json:"notice,omitempty"`
	Roll     int         `json:"roll,omitempty"`
	Offer    *TradeOffer `json:"offer,omitempty"`
	Entries  []LogEntry  `json:"entries"`
}
