package render

import (
	"testing"

	"github.com/wricardo/money-dash/game/engine"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single token", "rolled a 4 (dice)", "rolled a 4 🎲"},
		{"several tokens", "(win) and (money)", "🏆 and 💰"},
		{"repeated token", "(fire)(fire)", "🔥🔥"},
		{"unknown token passes through", "hello (wave)", "hello (wave)"},
		{"case sensitive", "(DICE) (Dice)", "(DICE) (Dice)"},
		{"substring inside a word", "x(star)y", "x⭐y"},
		{"no tokens", "plain text", "plain text"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Substitute(tt.in); got != tt.want {
				t.Errorf("Substitute(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestShortcuts(t *testing.T) {
	list := Shortcuts()
	if len(list) != len(shortcuts) {
		t.Fatalf("Expected %d shortcuts, got %d", len(shortcuts), len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Token >= list[i].Token {
			t.Errorf("Shortcuts not sorted at %d: %q >= %q", i, list[i-1].Token, list[i].Token)
		}
	}

	list[0].Emoji = "changed"
	if Shortcuts()[0].Emoji == "changed" {
		t.Error("Shortcuts should return a copy")
	}
}

func TestEntries(t *testing.T) {
	in := []engine.LogEntry{
		{Seq: 1, Kind: engine.KindRoll, Text: "Player 1 rolled a 2 (dice)"},
		{Seq: 2, Kind: engine.KindChat, Text: "Player 2: gg"},
	}

	out := Entries(in)
	if len(out) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(out))
	}
	if out[0].Display != "Player 1 rolled a 2 🎲" {
		t.Errorf("Unexpected display text %q", out[0].Display)
	}
	if out[0].Text != in[0].Text {
		t.Error("Raw text should be kept")
	}
	if out[1].Display != out[1].Text {
		t.Errorf("Expected unchanged display for plain text, got %q", out[1].Display)
	}
}
