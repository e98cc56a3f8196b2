// Package render holds the presentation-side text handling shared by the
// transports. The engine logs plain shortcut tokens; renderers substitute
// them for display.
package render

import (
	"sort"
	"strings"

	"github.com/wricardo/money-dash/game/engine"
)

// Shortcut maps one bracketed token to its glyph.
type Shortcut struct {
	Token string `json:"token"`
	Emoji string `json:"emoji"`
}

var shortcuts = []Shortcut{
	{"(dice)", "🎲"},
	{"(win)", "🏆"},
	{"(money)", "💰"},
	{"(smile)", "😊"},
	{"(sad)", "😢"},
	{"(laugh)", "😂"},
	{"(heart)", "❤️"},
	{"(fire)", "🔥"},
	{"(thumbsup)", "👍"},
	{"(thumbsdown)", "👎"},
	{"(party)", "🎉"},
	{"(cool)", "😎"},
	{"(angry)", "😠"},
	{"(wink)", "😉"},
	{"(star)", "⭐"},
	{"(trade)", "🤝"},
	{"(rocket)", "🚀"},
	{"(think)", "🤔"},
}

var replacer = newReplacer()

func newReplacer() *strings.Replacer {
	pairs := make([]string, 0, 2*len(shortcuts))
	for _, s := range shortcuts {
		pairs = append(pairs, s.Token, s.Emoji)
	}
	return strings.NewReplacer(pairs...)
}

// Substitute replaces every known token in text. Matching is literal and
// case-sensitive; unknown tokens are left as they are.
func Substitute(text string) string {
	return replacer.Replace(text)
}

// Shortcuts returns the token table sorted by token.
func Shortcuts() []Shortcut {
	out := append([]Shortcut(nil), shortcuts...)
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out
}

// Entry is a log entry with its display text.
type Entry struct {
	engine.LogEntry
	Display string `json:"display"`
}

// Entries adds display text to log entries.
func Entries(entries []engine.LogEntry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{LogEntry: e, Display: Substitute(e.Text)}
	}
	return out
}
