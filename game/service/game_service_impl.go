package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/money-dash/game/engine"
)

// ErrInvalidRequest marks caller mistakes such as an unknown layout.
var ErrInvalidRequest = errors.New("invalid request")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *zap.Logger
	mu       sync.Mutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, logger *zap.Logger) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   logger,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	layout, err := engine.ParseLayoutMode(opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	if opts.ConfigID != "" {
		config, err = s.configs.LoadConfig(opts.ConfigID)
		if err != nil {
			availableConfigs, listErr := s.configs.ListConfigs()
			if listErr == nil && len(availableConfigs) > 0 {
				var configIDs []string
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return nil, fmt.Errorf("config '%s' unavailable (available configs: %v): %w", opts.ConfigID, configIDs, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", opts.ConfigID, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	engineOpts := []engine.Option{engine.WithLayout(layout)}
	if opts.Seed != nil {
		engineOpts = append(engineOpts, engine.WithSeed(*opts.Seed))
	}

	session, err := s.sessions.Create("", config, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session.ConfigID = opts.ConfigID
	if session.ConfigID == "" {
		session.ConfigID = s.getConfigID(config.Name)
	}

	s.logger.Info("session created",
		zap.String("session", session.ID),
		zap.String("config", session.ConfigID),
		zap.String("layout", string(layout)),
		zap.Bool("seeded", opts.Seed != nil))

	return s.info(session), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return s.info(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session not found: %w", err)
	}
	s.logger.Info("session deleted", zap.String("session", sessionID))
	return nil
}

func (s *gameServiceImpl) info(session *Session) *SessionInfo {
	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     session.ConfigID,
		Layout:         session.Engine.GetBoard().Mode,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.Snapshot(),
		GameConfig:     session.Config,
	}
}

// RollDice rolls for the current player
func (s *gameServiceImpl) RollDice(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.run(ctx, sessionID, "roll", func(e *engine.GameEngine) engine.Outcome {
		return e.RollDice()
	})
}

// EndTurn passes the turn to the other player
func (s *gameServiceImpl) EndTurn(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.run(ctx, sessionID, "end_turn", func(e *engine.GameEngine) engine.Outcome {
		return e.EndTurn()
	})
}

// InitiateTrade opens a draft offer to target
func (s *gameServiceImpl) InitiateTrade(ctx context.Context, sessionID string, target engine.PlayerID) (*CommandResult, error) {
	return s.run(ctx, sessionID, "initiate_trade", func(e *engine.GameEngine) engine.Outcome {
		return e.InitiateTrade(target)
	})
}

// SendOffer sends the current player's draft
func (s *gameServiceImpl) SendOffer(ctx context.Context, sessionID string, amount int, message string) (*CommandResult, error) {
	return s.run(ctx, sessionID, "send_offer", func(e *engine.GameEngine) engine.Outcome {
		return e.SendOffer(amount, message)
	})
}

// AcceptTrade accepts the sent offer
func (s *gameServiceImpl) AcceptTrade(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.run(ctx, sessionID, "accept_trade", func(e *engine.GameEngine) engine.Outcome {
		return e.AcceptTrade()
	})
}

// DeclineTrade declines the sent offer
func (s *gameServiceImpl) DeclineTrade(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.run(ctx, sessionID, "decline_trade", func(e *engine.GameEngine) engine.Outcome {
		return e.DeclineTrade()
	})
}

// CancelTrade discards the draft offer
func (s *gameServiceImpl) CancelTrade(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.run(ctx, sessionID, "cancel_trade", func(e *engine.GameEngine) engine.Outcome {
		return e.CancelTrade()
	})
}

// SendChat posts a chat line as the current player
func (s *gameServiceImpl) SendChat(ctx context.Context, sessionID, text string) (*CommandResult, error) {
	return s.run(ctx, sessionID, "chat", func(e *engine.GameEngine) engine.Outcome {
		return e.SendChatMessage(text)
	})
}

// Rematch starts the next game of the series
func (s *gameServiceImpl) Rematch(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.run(ctx, sessionID, "rematch", func(e *engine.GameEngine) engine.Outcome {
		return e.Rematch()
	})
}

// Restart resets the session to game one
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.run(ctx, sessionID, "restart", func(e *engine.GameEngine) engine.Outcome {
		return e.Restart()
	})
}

// run applies one engine command under the service lock.
func (s *gameServiceImpl) run(ctx context.Context, sessionID, command string, apply func(*engine.GameEngine) engine.Outcome) (*CommandResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	before := sess.Engine.Snapshot()
	out := apply(sess.Engine)
	after := sess.Engine.Snapshot()

	entries := out.Entries
	if entries == nil {
		entries = []engine.LogEntry{}
	}

	result := &CommandResult{
		Command:  command,
		Accepted: out.Accepted,
		Notice:   out.Notice,
		Roll:     out.Roll,
		Offer:    out.Offer,
		Entries:  entries,
		Events:   extractEvents(command, out, before, after),
		State:    after,
	}

	fields := []zap.Field{
		zap.String("session", sess.ID),
		zap.String("command", command),
		zap.Int("player", int(before.Turn.CurrentPlayer)),
		zap.Bool("accepted", out.Accepted),
	}
	if out.Accepted {
		s.logger.Info("command applied", fields...)
	} else {
		s.logger.Debug("command rejected", append(fields, zap.String("notice", out.Notice))...)
	}

	return result, nil
}

// GetGameState retrieves the current snapshot
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.Snapshot(), nil
}

// GetLog returns a page of the message log
func (s *gameServiceImpl) GetLog(ctx context.Context, sessionID string, opts HistoryOptions) (*LogResponse, error) {
	s.mu.Lock()
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("session not found: %w", err)
	}
	history := sess.Engine.GetLog()
	s.mu.Unlock()

	return paginate(filterLog(history, opts), opts), nil
}

func filterLog(history []engine.LogEntry, opts HistoryOptions) []engine.LogEntry {
	if opts.Kind == "" && opts.Game == 0 {
		return history
	}
	filtered := make([]engine.LogEntry, 0, len(history))
	for _, entry := range history {
		if opts.Kind != "" && entry.Kind != opts.Kind {
			continue
		}
		if opts.Game != 0 && entry.Game != opts.Game {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

func paginate(history []engine.LogEntry, opts HistoryOptions) *LogResponse {
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var entries []engine.LogEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			entries = append(entries, history[i])
		}
	} else if start < total {
		entries = history[start:end]
	}

	if entries == nil {
		entries = []engine.LogEntry{}
	}

	return &LogResponse{
		Entries:      entries,
		TotalEntries: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}
}

// ListConfigs returns available rule presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific rule preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a rule preset to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// extractEvents describes what a command changed between two snapshots
func extractEvents(command string, out engine.Outcome, before, after *engine.Snapshot) []GameEvent {
	events := []GameEvent{}
	now := time.Now()
	add := func(typ string, player engine.PlayerID, format string, args ...any) {
		events = append(events, GameEvent{
			Type:      typ,
			Message:   fmt.Sprintf(format, args...),
			Player:    player,
			Timestamp: now,
		})
	}

	if !out.Accepted {
		add("rejected", before.Turn.CurrentPlayer, "%s", out.Notice)
		return events
	}

	switch {
	case command == "restart":
		add("reset", engine.NoPlayer, "Game reset to initial state")
		return events
	case after.GameNumber > before.GameNumber:
		add("rematch", engine.NoPlayer, "Game %d started", after.GameNumber)
		return events
	}

	mover := before.Turn.CurrentPlayer
	if p, q := before.Player(mover), after.Player(mover); p.Position != q.Position {
		add("moved", mover, "%s moved from %d to %d", q.Name, p.Position, q.Position)
	}

	if countCollected(after) > countCollected(before) {
		add("money_collected", mover, "Collected a money square")
	}

	if out.Offer != nil {
		switch out.Offer.Status {
		case engine.OfferDraft:
			add("offer_drafted", out.Offer.From, "Draft offer of $%d", out.Offer.Amount)
		case engine.OfferSent:
			if command == "send_offer" {
				add("offer_sent", out.Offer.From, "Offer of $%d sent", out.Offer.Amount)
			}
		case engine.OfferAccepted:
			add("offer_accepted", out.Offer.To, "Offer of $%d accepted", out.Offer.Amount)
		case engine.OfferDeclined:
			add("offer_declined", out.Offer.To, "Offer of $%d declined", out.Offer.Amount)
		}
	}

	if before.Turn.CurrentPlayer != after.Turn.CurrentPlayer {
		add("turn_changed", after.Turn.CurrentPlayer, "Turn %d", after.Turn.TurnNumber)
	}

	if !before.Turn.GameOver && after.Turn.GameOver {
		add("game_over", after.Turn.Winner, "Game over: %s", after.Turn.GameOverReason)
	}
	if !before.Match.Decided && after.Match.Decided {
		add("match_decided", after.Match.Champion, "Match decided")
	}

	return events
}

func countCollected(s *engine.Snapshot) int {
	n := 0
	for _, sq := range s.MoneySquares {
		if sq.Collected {
			n++
		}
	}
	return n
}
