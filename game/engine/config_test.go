package engine

import (
	"strings"
	"testing"
)

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *GameConfig)
		wantErr string
	}{
		{name: "classic rules", mutate: func(c *GameConfig) {}},
		{name: "no players listed", mutate: func(c *GameConfig) { c.Players = nil }},
		{name: "missing name", mutate: func(c *GameConfig) { c.Name = "  " }, wantErr: "name is required"},
		{name: "no starting money", mutate: func(c *GameConfig) { c.StartingMoney = 0 }, wantErr: "starting_money"},
		{name: "negative win bonus", mutate: func(c *GameConfig) { c.WinBonus = -1 }, wantErr: "win_bonus"},
		{name: "negative rematch fee", mutate: func(c *GameConfig) { c.RematchFee = -5 }, wantErr: "rematch_fee"},
		{name: "zero minimum offer", mutate: func(c *GameConfig) { c.MinOffer = 0 }, wantErr: "min_offer"},
		{name: "default below minimum", mutate: func(c *GameConfig) { c.DefaultOffer = 5 }, wantErr: "default_offer"},
		{name: "no amounts", mutate: func(c *GameConfig) { c.MoneyAmounts = nil }, wantErr: "money_amounts"},
		{name: "non-positive amount", mutate: func(c *GameConfig) { c.MoneyAmounts = []int{10, 0} }, wantErr: "money_amounts[1]"},
		{name: "zero density", mutate: func(c *GameConfig) { c.MoneySquareDensity = 0 }, wantErr: "density"},
		{name: "density above one", mutate: func(c *GameConfig) { c.MoneySquareDensity = 1.5 }, wantErr: "density"},
		{name: "three players", mutate: func(c *GameConfig) {
			c.Players = append(c.Players, PlayerConfig{Name: "Player 3"})
		}, wantErr: "exactly 2"},
		{name: "unnamed player", mutate: func(c *GameConfig) { c.Players[1].Name = "" }, wantErr: "players[1].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := ValidateGameConfig(config)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateGameConfig_Nil(t *testing.T) {
	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestParseLayoutMode(t *testing.T) {
	cases := map[string]LayoutMode{
		"":        LayoutWide,
		"wide":    LayoutWide,
		" WIDE ":  LayoutWide,
		"narrow":  LayoutNarrow,
		"Narrow":  LayoutNarrow,
	}
	for in, want := range cases {
		got, err := ParseLayoutMode(in)
		if err != nil {
			t.Errorf("ParseLayoutMode(%q) returned error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLayoutMode(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseLayoutMode("huge"); err == nil {
		t.Error("Expected error for unknown layout")
	}
}

func TestNewBoard_UnknownModeFallsBackToWide(t *testing.T) {
	b := NewBoard(LayoutMode("odd"))
	if b.Mode != LayoutWide || b.Size != WideBoardSize {
		t.Errorf("Expected wide board, got %+v", b)
	}
}

func TestPlayerConfig_Fallback(t *testing.T) {
	config := DefaultConfig()
	config.Players = nil

	e, err := NewEngine(config, WithSeed(3))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	s := e.Snapshot()
	if s.Players[1].Name != "Player 2" {
		t.Errorf("Expected fallback name 'Player 2', got %q", s.Players[1].Name)
	}
}
