// Command analyze plays seeded self-play games over a rule preset and prints
// quick, human-readable heuristics: win rates per seat, how often games end
// in bankruptcy, average game length, and how much money changes hands.
//
// Every game uses its own seed (seed, seed+1, ...) so a run is reproducible.
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/money-dash/game/config"
	"github.com/wricardo/money-dash/game/engine"
)

// maxCommands bounds a single game so a broken preset cannot spin forever.
const maxCommands = 10000

// Policy decides how a simulated player behaves each turn.
type Policy struct {
	// TradeRate is the chance, before rolling, that the current player
	// gifts money to the other.
	TradeRate float64
	// TradeAmount is the gift size; zero uses the preset's default offer.
	TradeAmount int
	// Rematches keeps playing the series after each win until the match is
	// decided or the limit is reached.
	Rematches int
}

// GameResult summarizes one finished series.
type GameResult struct {
	Seed       int64
	Games      int
	Turns      int
	Winner     engine.PlayerID
	Reason     engine.GameOverReason
	Trades     int
	Money      [2]int
	Decided    bool
	Champion   engine.PlayerID
	Collected  int
	Unfinished bool
}

// Report aggregates results for one layout.
type Report struct {
	Preset      string
	Layout      engine.LayoutMode
	Board       engine.Board
	Runs        int
	Wins        map[engine.PlayerID]int
	Bankruptcy  int
	Unfinished  int
	Decided     int
	TotalTurns  int
	TotalGames  int
	TotalTrades int
	Collected   int
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Self-play a rule preset and summarize the outcomes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing rule presets"},
			&cli.StringFlag{Name: "preset", Value: "classic", Usage: "Preset to analyze"},
			&cli.StringFlag{Name: "layout", Usage: "wide, narrow, or empty for both"},
			&cli.IntFlag{Name: "games", Value: 500, Usage: "Runs per layout"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "First seed"},
			&cli.FloatFlag{Name: "trade-rate", Value: 0.1, Usage: "Chance per turn of gifting money"},
			&cli.IntFlag{Name: "trade-amount", Usage: "Gift size (default: preset's default offer)"},
			&cli.IntFlag{Name: "rematches", Usage: "Rematches played after each win"},
		},
		Action: run,
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}
	preset, err := manager.LoadConfig(cmd.String("preset"))
	if err != nil {
		return err
	}

	layouts := []engine.LayoutMode{engine.LayoutWide, engine.LayoutNarrow}
	if name := cmd.String("layout"); name != "" {
		mode, err := engine.ParseLayoutMode(name)
		if err != nil {
			return err
		}
		layouts = []engine.LayoutMode{mode}
	}

	policy := Policy{
		TradeRate:   cmd.Float("trade-rate"),
		TradeAmount: int(cmd.Int("trade-amount")),
		Rematches:   int(cmd.Int("rematches")),
	}
	out := io.Writer(os.Stdout)
	if cmd.Writer != nil {
		out = cmd.Writer
	}

	for _, layout := range layouts {
		report, err := Analyze(preset, layout, int(cmd.Int("games")), int64(cmd.Int("seed")), policy)
		if err != nil {
			return err
		}
		report.Print(out)
	}
	return nil
}

// Analyze plays runs series of the preset on layout.
func Analyze(preset *engine.GameConfig, layout engine.LayoutMode, runs int, seed int64, policy Policy) (*Report, error) {
	report := &Report{
		Preset: preset.Name,
		Layout: layout,
		Board:  engine.NewBoard(layout),
		Wins:   make(map[engine.PlayerID]int),
	}

	for i := 0; i < runs; i++ {
		result, err := PlayGame(preset, layout, seed+int64(i), policy)
		if err != nil {
			return nil, err
		}
		report.add(result)
	}
	return report, nil
}

// PlayGame runs one seeded series to completion.
func PlayGame(preset *engine.GameConfig, layout engine.LayoutMode, seed int64, policy Policy) (*GameResult, error) {
	eng, err := engine.NewEngine(preset, engine.WithLayout(layout), engine.WithSeed(seed))
	if err != nil {
		return nil, err
	}
	// separate stream so trade decisions never shift the dice
	choices := rand.New(rand.NewSource(seed ^ 0x5eed))
	result := &GameResult{Seed: seed}

	amount := policy.TradeAmount
	if amount <= 0 {
		amount = eng.GetConfig().DefaultOffer
	}

	rematches := policy.Rematches
	for commands := 0; commands < maxCommands; commands++ {
		state := eng.Snapshot()

		if state.Turn.GameOver {
			result.Games++
			result.Winner = state.Turn.Winner
			result.Reason = state.Turn.GameOverReason
			if rematches > 0 && !state.Match.Decided {
				if eng.Rematch().Accepted {
					rematches--
					continue
				}
			}
			finish(result, eng.Snapshot())
			return result, nil
		}

		if state.Turn.LastDiceRoll != nil {
			eng.EndTurn()
			result.Turns++
			continue
		}

		if policy.TradeRate > 0 && choices.Float64() < policy.TradeRate && gift(eng, state.Turn.CurrentPlayer, amount) {
			result.Trades++
			continue
		}

		eng.RollDice()
	}

	result.Unfinished = true
	finish(result, eng.Snapshot())
	return result, nil
}

// gift has the current player offer amount to the other, who accepts.
func gift(eng *engine.GameEngine, from engine.PlayerID, amount int) bool {
	if !eng.InitiateTrade(from.Other()).Accepted {
		return false
	}
	if !eng.SendOffer(amount, "analysis gift").Accepted {
		eng.CancelTrade()
		return false
	}
	return eng.AcceptTrade().Accepted
}

func finish(result *GameResult, state *engine.Snapshot) {
	result.Money = [2]int{state.Players[0].Money, state.Players[1].Money}
	result.Decided = state.Match.Decided
	result.Champion = state.Match.Champion
	for _, sq := range state.MoneySquares {
		if sq.Collected {
			result.Collected++
		}
	}
}

func (r *Report) add(result *GameResult) {
	r.Runs++
	r.TotalTurns += result.Turns
	r.TotalGames += result.Games
	r.TotalTrades += result.Trades
	r.Collected += result.Collected

	if result.Unfinished {
		r.Unfinished++
		return
	}
	if result.Decided {
		r.Decided++
	}
	if result.Reason == engine.ReasonBankruptcy {
		r.Bankruptcy++
	}
	r.Wins[result.Winner]++
}

// WinRate is the share of finished runs the seat won.
func (r *Report) WinRate(id engine.PlayerID) float64 {
	finished := r.Runs - r.Unfinished
	if finished == 0 {
		return 0
	}
	return float64(r.Wins[id]) / float64(finished)
}

// AverageTurns is the mean number of completed turns per game.
func (r *Report) AverageTurns() float64 {
	if r.TotalGames == 0 {
		return 0
	}
	return float64(r.TotalTurns) / float64(r.TotalGames)
}

// MinRolls is the fewest rolls that can reach the finish.
func (r *Report) MinRolls() int {
	if r.Board.MaxRoll == 0 {
		return 0
	}
	return (r.Board.WinningTile + r.Board.MaxRoll - 1) / r.Board.MaxRoll
}

// Print writes the report in a fixed text layout.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "\n=== %s on %s board ===\n", r.Preset, r.Layout)
	fmt.Fprintf(w, "Board: %dx%d, tiles 0-%d, die 1-%d (finish in %d rolls at best)\n",
		r.Board.Size, r.Board.Size, r.Board.WinningTile, r.Board.MaxRoll, r.MinRolls())
	fmt.Fprintf(w, "Runs: %d (%d games)\n", r.Runs, r.TotalGames)
	fmt.Fprintf(w, "Player 1 wins: %.1f%%\n", 100*r.WinRate(engine.Player1))
	fmt.Fprintf(w, "Player 2 wins: %.1f%%\n", 100*r.WinRate(engine.Player2))
	if draws := r.Wins[engine.NoPlayer]; draws > 0 {
		fmt.Fprintf(w, "No winner: %d\n", draws)
	}
	fmt.Fprintf(w, "Bankruptcies: %d\n", r.Bankruptcy)
	fmt.Fprintf(w, "Average turns per game: %.2f\n", r.AverageTurns())
	fmt.Fprintf(w, "Trades completed: %d\n", r.TotalTrades)
	fmt.Fprintf(w, "Money tiles collected: %d\n", r.Collected)
	if r.Decided > 0 {
		fmt.Fprintf(w, "Matches decided by forfeit: %d\n", r.Decided)
	}
	if r.Unfinished > 0 {
		fmt.Fprintf(w, "%s\n", strings.ToUpper("warning: ")+fmt.Sprintf("%d runs hit the command limit", r.Unfinished))
	}
}
