package service

import (
	"context"
	"time"

	"github.com/wricardo/money-dash/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Turn flow
	RollDice(ctx context.Context, sessionID string) (*CommandResult, error)
	EndTurn(ctx context.Context, sessionID string) (*CommandResult, error)

	// Trading
	InitiateTrade(ctx context.Context, sessionID string, target engine.PlayerID) (*CommandResult, error)
	SendOffer(ctx context.Context, sessionID string, amount int, message string) (*CommandResult, error)
	AcceptTrade(ctx context.Context, sessionID string) (*CommandResult, error)
	DeclineTrade(ctx context.Context, sessionID string) (*CommandResult, error)
	CancelTrade(ctx context.Context, sessionID string) (*CommandResult, error)

	// Chat
	SendChat(ctx context.Context, sessionID, text string) (*CommandResult, error)

	// Lifecycle
	Rematch(ctx context.Context, sessionID string) (*CommandResult, error)
	Restart(ctx context.Context, sessionID string) (*CommandResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetLog(ctx context.Context, sessionID string, opts HistoryOptions) (*LogResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig, opts ...engine.Option) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles rule preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
