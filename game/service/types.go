package service

import (
	"time"

	"github.com/wricardo/money-dash/game/engine"
)

// CreateOptions selects the rules and board of a new session
type CreateOptions struct {
	ConfigID string `json:"config_id,omitempty"`
	Layout   string `json:"layout,omitempty"` // "wide" (default) or "narrow"
	Seed     *int64 `json:"seed,omitempty"`   // fixed seed for reproducible games
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Layout         engine.LayoutMode  `json:"layout"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.Snapshot   `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// CommandResult contains the result of a game command
type CommandResult struct {
	Command  string             `json:"command"`
	Accepted bool               `json:"accepted"`
	Notice   string             `json:"notice,omitempty"`
	Roll     int                `json:"roll,omitempty"`
	Offer    *engine.TradeOffer `json:"offer,omitempty"`
	Entries  []engine.LogEntry  `json:"entries"`
	Events   []GameEvent        `json:"events"`
	State    *engine.Snapshot   `json:"state"`
}

// GameEvent represents a state transition caused by a command
type GameEvent struct {
	Type      string          `json:"type"` // "turn_changed", "money_collected", "offer_sent", "game_over", "rematch", "reset", ...
	Message   string          `json:"message"`
	Player    engine.PlayerID `json:"player,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// HistoryOptions configures log retrieval
type HistoryOptions struct {
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Order string           `json:"order"`          // "asc" or "desc"
	Kind  engine.EntryKind `json:"kind,omitempty"` // only entries of this kind
	Game  int              `json:"game,omitempty"` // only entries of this game number
}

// LogResponse contains a page of the message log
type LogResponse struct {
	Entries      []engine.LogEntry `json:"entries"`
	TotalEntries int               `json:"total_entries"`
	Page         int               `json:"page"`
	PageSize     int               `json:"page_size"`
	TotalPages   int               `json:"total_pages"`
	HasNext      bool              `json:"has_next"`
	HasPrevious  bool              `json:"has_previous"`
}

// ConfigInfo provides information about a rule preset
type ConfigInfo struct {
	Filename      string `json:"filename"`
	ConfigID      string `json:"config_id"` // The identifier to use for session creation
	Name          string `json:"name"`      // Display name
	Description   string `json:"description"`
	Format        string `json:"format"` // json, yaml or yml
	StartingMoney int    `json:"starting_money"`
	RematchFee    int    `json:"rematch_fee"`
	MinOffer      int    `json:"min_offer"`
}
