package engine

import (
	"fmt"
	"strings"
)

// Rule limits
const (
	MinStartingMoney = 1
	MaxStartingMoney = 10000
	MinOfferFloor    = 1
)

// PlayerConfig sets the display identity of a seat.
type PlayerConfig struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// GameConfig holds the rules of a game. Presets are loaded from disk by the
// config manager; zero values are filled in by DefaultConfig.
type GameConfig struct {
	Name               string         `json:"name" yaml:"name"`
	Description        string         `json:"description" yaml:"description"`
	StartingMoney      int            `json:"starting_money" yaml:"starting_money" env-default:"100"`
	WinBonus           int            `json:"win_bonus" yaml:"win_bonus" env-default:"20"`
	RematchFee         int            `json:"rematch_fee" yaml:"rematch_fee" env-default:"25"`
	MinOffer           int            `json:"min_offer" yaml:"min_offer" env-default:"10"`
	DefaultOffer       int            `json:"default_offer" yaml:"default_offer" env-default:"50"`
	MoneyAmounts       []int          `json:"money_amounts" yaml:"money_amounts" env-default:"10,15,20,25"`
	MoneySquareDensity float64        `json:"money_square_density" yaml:"money_square_density" env-default:"0.3"`
	Players            []PlayerConfig `json:"players" yaml:"players"`
	Welcome            string         `json:"welcome" yaml:"welcome"`
}

// DefaultConfig returns the classic rules.
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:               "classic",
		Description:        "Race to the last tile, grab cash on the way, trade if you dare",
		StartingMoney:      100,
		WinBonus:           20,
		RematchFee:         25,
		MinOffer:           10,
		DefaultOffer:       50,
		MoneyAmounts:       []int{10, 15, 20, 25},
		MoneySquareDensity: 0.3,
		Players: []PlayerConfig{
			{Name: "Player 1", Color: "#e74c3c"},
			{Name: "Player 2", Color: "#3498db"},
		},
		Welcome: "Welcome to Money Dash! (dice) Roll to move, first to the last tile wins (win)",
	}
}

// ValidateGameConfig validates a rule set for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if strings.TrimSpace(config.Name) == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.StartingMoney < MinStartingMoney || config.StartingMoney > MaxStartingMoney {
		return fmt.Errorf("config validation: starting_money must be between %d and %d, got %d",
			MinStartingMoney, MaxStartingMoney, config.StartingMoney)
	}
	if config.WinBonus < 0 {
		return fmt.Errorf("config validation: win_bonus must not be negative, got %d", config.WinBonus)
	}
	if config.RematchFee < 0 {
		return fmt.Errorf("config validation: rematch_fee must not be negative, got %d", config.RematchFee)
	}

	if config.MinOffer < MinOfferFloor {
		return fmt.Errorf("config validation: min_offer must be at least %d, got %d", MinOfferFloor, config.MinOffer)
	}
	if config.DefaultOffer < config.MinOffer {
		return fmt.Errorf("config validation: default_offer (%d) must be at least min_offer (%d)",
			config.DefaultOffer, config.MinOffer)
	}

	if len(config.MoneyAmounts) == 0 {
		return fmt.Errorf("config validation: money_amounts must contain at least one amount")
	}
	for i, amount := range config.MoneyAmounts {
		if amount <= 0 {
			return fmt.Errorf("config validation: money_amounts[%d] must be positive, got %d", i, amount)
		}
	}
	if config.MoneySquareDensity <= 0 || config.MoneySquareDensity > 1 {
		return fmt.Errorf("config validation: money_square_density must be in (0, 1], got %g", config.MoneySquareDensity)
	}

	if len(config.Players) != 0 && len(config.Players) != 2 {
		return fmt.Errorf("config validation: players must list exactly 2 seats, got %d", len(config.Players))
	}
	for i, p := range config.Players {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("config validation: players[%d].name is required", i)
		}
	}

	return nil
}

// ParseLayoutMode maps user input to a layout; empty input means wide.
func ParseLayoutMode(s string) (LayoutMode, error) {
	switch LayoutMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", LayoutWide:
		return LayoutWide, nil
	case LayoutNarrow:
		return LayoutNarrow, nil
	default:
		return "", fmt.Errorf("unknown layout mode %q (want %q or %q)", s, LayoutWide, LayoutNarrow)
	}
}

// NewBoard returns the board geometry for a layout.
func NewBoard(mode LayoutMode) Board {
	size, maxRoll := WideBoardSize, WideMaxRoll
	if mode == LayoutNarrow {
		size, maxRoll = NarrowBoardSize, NarrowMaxRoll
	} else {
		mode = LayoutWide
	}
	total := size * size
	return Board{
		Mode:         mode,
		Size:         size,
		TotalSquares: total,
		WinningTile:  total - 1,
		MaxRoll:      maxRoll,
	}
}

func (c *GameConfig) playerConfig(id PlayerID) PlayerConfig {
	idx := int(id) - 1
	if idx >= 0 && idx < len(c.Players) {
		return c.Players[idx]
	}
	return PlayerConfig{Name: fmt.Sprintf("Player %d", id)}
}
