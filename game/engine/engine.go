package engine

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Turn flow
	RollDice() Outcome
	EndTurn() Outcome

	// Trading
	InitiateTrade(target PlayerID) Outcome
	SendOffer(amount int, message string) Outcome
	AcceptTrade() Outcome
	DeclineTrade() Outcome
	CancelTrade() Outcome

	// Chat
	SendChatMessage(text string) Outcome

	// Lifecycle
	Rematch() Outcome
	Restart() Outcome

	// Observation
	Snapshot() *Snapshot
	IsGameOver() bool
	CurrentPlayer() PlayerID
	GetConfig() *GameConfig
	GetBoard() Board
	GetLog() []LogEntry
}

// Roller returns a uniform value in [1, sides].
type Roller interface {
	Roll(sides int) int
}

// RollerFunc adapts a function to Roller.
type RollerFunc func(sides int) int

// Roll implements Roller.
func (f RollerFunc) Roll(sides int) int { return f(sides) }

type randRoller struct{ rng *rand.Rand }

func (r randRoller) Roll(sides int) int { return rollDie(r.rng, sides) }

// Option customises a GameEngine at construction.
type Option func(*GameEngine)

// WithLayout fixes the board layout for the session.
func WithLayout(mode LayoutMode) Option {
	return func(e *GameEngine) { e.board = NewBoard(mode) }
}

// WithSeed seeds the engine's random source (dice, prizes, offer ids).
func WithSeed(seed int64) Option {
	return func(e *GameEngine) { e.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand uses the provided random source.
func WithRand(rng *rand.Rand) Option {
	return func(e *GameEngine) { e.rng = rng }
}

// WithRoller overrides where dice values come from. Prize placement still
// uses the engine's random source.
func WithRoller(r Roller) Option {
	return func(e *GameEngine) { e.roller = r }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *GameEngine) { e.logger = logger }
}

// WithClock overrides the timestamp source of log entries.
func WithClock(now func() time.Time) Option {
	return func(e *GameEngine) { e.now = now }
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialise commands.
type GameEngine struct {
	config *GameConfig
	board  Board
	rng    *rand.Rand
	roller Roller
	logger *zap.Logger
	now    func() time.Time

	gameNumber int
	players    [2]Player
	squares    []MoneySquare
	turn       TurnState
	offer      *TradeOffer
	match      MatchResult
	log        []LogEntry
	seq        int

	// entries appended by the command in flight
	pending []LogEntry
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config: config,
		board:  NewBoard(LayoutWide),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(NewSeed()))
	}
	if e.roller == nil {
		e.roller = randRoller{rng: e.rng}
	}

	e.reset()
	e.pending = nil
	e.logger.Debug("engine created",
		zap.String("config", config.Name),
		zap.String("layout", string(e.board.Mode)),
		zap.Int("money_squares", len(e.squares)))
	return e, nil
}

// NewEngineWithDefaults creates a wide-board engine with the classic rules
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	e, err := NewEngine(DefaultConfig(), opts...)
	if err != nil {
		// the classic rules always validate
		panic(err)
	}
	return e
}

// reset puts the engine back to the start of game one.
func (e *GameEngine) reset() {
	e.gameNumber = 1
	for i := range e.players {
		id := PlayerID(i + 1)
		pc := e.config.playerConfig(id)
		e.players[i] = Player{
			ID:       id,
			Name:     pc.Name,
			Color:    pc.Color,
			Position: 0,
			Money:    e.config.StartingMoney,
		}
	}
	e.log = nil
	e.seq = 0
	e.match = MatchResult{}
	e.startGame()
	if e.config.Welcome != "" {
		e.record(KindSystem, NoPlayer, e.config.Welcome)
	}
}

// startGame clears per-game state and deals fresh prizes.
func (e *GameEngine) startGame() {
	for i := range e.players {
		e.players[i].Position = 0
	}
	e.squares = generateMoneySquares(e.rng, e.board, e.config)
	e.turn = TurnState{CurrentPlayer: Player1, TurnNumber: 1}
	e.offer = nil
}

func (e *GameEngine) player(id PlayerID) *Player {
	if id == Player2 {
		return &e.players[1]
	}
	return &e.players[0]
}

// record appends a log entry and tracks it for the current command.
func (e *GameEngine) record(kind EntryKind, who PlayerID, text string) {
	e.seq++
	entry := LogEntry{
		Seq:       e.seq,
		Game:      e.gameNumber,
		Turn:      e.turn.TurnNumber,
		Kind:      kind,
		Player:    who,
		Text:      text,
		Timestamp: e.now(),
	}
	e.log = append(e.log, entry)
	e.pending = append(e.pending, entry)
}

func (e *GameEngine) recordf(kind EntryKind, who PlayerID, format string, args ...any) {
	e.record(kind, who, fmt.Sprintf(format, args...))
}

// begin starts collecting entries for a command.
func (e *GameEngine) begin() {
	e.pending = nil
}

// accept closes a successful command.
func (e *GameEngine) accept(out Outcome) Outcome {
	out.Accepted = true
	out.Entries = e.pending
	e.pending = nil
	return out
}

// reject logs a user-visible notice and leaves state untouched.
func (e *GameEngine) reject(command, notice string) Outcome {
	e.record(KindNotice, e.turn.CurrentPlayer, notice)
	e.logger.Debug("command rejected",
		zap.String("command", command),
		zap.Int("player", int(e.turn.CurrentPlayer)),
		zap.String("notice", notice))
	out := Outcome{Accepted: false, Notice: notice, Entries: e.pending}
	e.pending = nil
	return out
}

func (e *GameEngine) newOfferID() string {
	id, err := uuid.NewRandomFromReader(e.rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// SendChatMessage posts a chat line as the current player
func (e *GameEngine) SendChatMessage(text string) Outcome {
	e.begin()
	text = strings.TrimSpace(text)
	if text == "" {
		return e.reject("chat", "Type a message before sending")
	}
	text = clip(text, MaxChatLength)
	who := e.turn.CurrentPlayer
	e.recordf(KindChat, who, "%s: %s", e.player(who).Name, text)
	return e.accept(Outcome{})
}

// Rematch starts the next game of the series once a game was won
func (e *GameEngine) Rematch() Outcome {
	e.begin()
	if !e.turn.GameOver {
		return e.reject("rematch", "Finish the current game before a rematch")
	}
	if e.match.Decided {
		return e.reject("rematch", "The match is decided. Restart to play again")
	}
	if e.turn.GameOverReason != ReasonWin {
		return e.reject("rematch", "A rematch is only possible after a win. Restart instead")
	}

	fee := e.config.RematchFee
	var short []PlayerID
	for _, p := range e.players {
		if p.Money < fee {
			short = append(short, p.ID)
		}
	}

	if len(short) > 0 {
		e.match = MatchResult{Decided: true, Forfeits: short}
		if len(short) == 1 {
			e.match.Champion = short[0].Other()
		}
		for _, id := range short {
			e.recordf(KindSystem, id, "%s can't pay the $%d rematch fee and forfeits", e.player(id).Name, fee)
		}
		if e.match.Champion != NoPlayer {
			e.recordf(KindWin, e.match.Champion, "%s wins the match! (win)", e.player(e.match.Champion).Name)
		} else {
			e.record(KindSystem, NoPlayer, "Nobody can pay the rematch fee. The match ends in a draw")
		}
		e.logger.Info("match decided by forfeit",
			zap.Int("champion", int(e.match.Champion)),
			zap.Int("forfeits", len(short)))
		return e.accept(Outcome{})
	}

	for i := range e.players {
		e.players[i].Money -= fee
	}
	e.gameNumber++
	e.startGame()
	e.recordf(KindSystem, NoPlayer, "Game %d begins! Both players paid the $%d rematch fee", e.gameNumber, fee)
	e.logger.Info("rematch started", zap.Int("game", e.gameNumber))
	return e.accept(Outcome{})
}

// Restart resets everything back to game one
func (e *GameEngine) Restart() Outcome {
	e.begin()
	e.reset()
	e.logger.Info("game restarted")
	return e.accept(Outcome{})
}

// Snapshot returns a deep copy of the observable state
func (e *GameEngine) Snapshot() *Snapshot {
	s := &Snapshot{
		GameNumber:   e.gameNumber,
		ConfigName:   e.config.Name,
		Players:      e.players,
		Board:        e.board,
		MoneySquares: append([]MoneySquare(nil), e.squares...),
		Turn:         e.turn,
		Match:        e.match,
		Log:          append([]LogEntry(nil), e.log...),
	}
	if e.turn.LastDiceRoll != nil {
		roll := *e.turn.LastDiceRoll
		s.Turn.LastDiceRoll = &roll
	}
	if e.offer != nil {
		offer := *e.offer
		s.Offer = &offer
	}
	s.Match.Forfeits = append([]PlayerID(nil), e.match.Forfeits...)
	if s.MoneySquares == nil {
		s.MoneySquares = []MoneySquare{}
	}
	if s.Log == nil {
		s.Log = []LogEntry{}
	}
	return s
}

// IsGameOver returns whether the current game has ended
func (e *GameEngine) IsGameOver() bool {
	return e.turn.GameOver
}

// CurrentPlayer returns the seat holding the turn
func (e *GameEngine) CurrentPlayer() PlayerID {
	return e.turn.CurrentPlayer
}

// GetConfig returns the rule set
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetBoard returns the board geometry
func (e *GameEngine) GetBoard() Board {
	return e.board
}

// GetLog returns the message log
func (e *GameEngine) GetLog() []LogEntry {
	return append([]LogEntry(nil), e.log...)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
