// Command autoplay plays a complete Money Dash series against a running
// server through its REST API, driving both seats with a simple strategy.
// It is handy for smoke-testing a deployment and for watching a renderer
// follow a live session over the websocket.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/money-dash/game/engine"
	"github.com/wricardo/money-dash/game/service"
	"github.com/wricardo/money-dash/render"
)

// ErrCommandLimit is returned when a series does not finish in time.
var ErrCommandLimit = errors.New("command limit reached")

// Summary describes a finished series.
type Summary struct {
	SessionID string
	Commands  int
	Rejected  int
	State     *engine.Snapshot
}

// Play drives the session until the strategy is done.
func Play(ctx context.Context, client *Client, strategy *Strategy, maxCommands int, out io.Writer, logger *zap.Logger) (*Summary, error) {
	summary := &Summary{SessionID: client.SessionID()}

	state, err := client.State(ctx)
	if err != nil {
		return nil, err
	}

	for summary.Commands < maxCommands {
		move, done := strategy.NextMove(state)
		if done {
			summary.State = state
			return summary, nil
		}

		result, err := client.Apply(ctx, move)
		if err != nil {
			return nil, err
		}
		summary.Commands++
		strategy.Observe(move, result.Accepted)

		if !result.Accepted {
			summary.Rejected++
			logger.Debug("move rejected",
				zap.String("session", summary.SessionID),
				zap.String("move", move.String()),
				zap.String("notice", result.Notice))
		}
		for _, entry := range result.Entries {
			fmt.Fprintf(out, "[game %d turn %d] %s\n", entry.Game, entry.Turn, render.Substitute(entry.Text))
		}

		state = result.State
	}

	summary.State = state
	return summary, ErrCommandLimit
}

// PrintSummary writes the final standings.
func PrintSummary(w io.Writer, summary *Summary) {
	state := summary.State
	fmt.Fprintf(w, "\nSession %s: %d games, %d commands (%d rejected)\n",
		summary.SessionID, state.GameNumber, summary.Commands, summary.Rejected)
	for _, p := range state.Players {
		fmt.Fprintf(w, "  %s: $%d on tile %d\n", p.Name, p.Money, p.Position)
	}

	switch {
	case state.Match.Decided && state.Match.Champion != engine.NoPlayer:
		fmt.Fprintf(w, "Match champion: %s\n", state.Player(state.Match.Champion).Name)
	case state.Match.Decided:
		fmt.Fprintln(w, "Match ended without a champion")
	case state.Turn.Winner != engine.NoPlayer:
		fmt.Fprintf(w, "Winner: %s (%s)\n", state.Player(state.Turn.Winner).Name, state.Turn.GameOverReason)
	case state.Turn.GameOver:
		fmt.Fprintf(w, "No winner (%s)\n", state.Turn.GameOverReason)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "Play a Money Dash series against a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "Server base URL", Sources: cli.EnvVars("MONEY_DASH_API_URL")},
			&cli.StringFlag{Name: "session", Usage: "Join an existing session instead of creating one"},
			&cli.StringFlag{Name: "preset", Usage: "Rule preset for a new session"},
			&cli.StringFlag{Name: "layout", Value: "wide", Usage: "Board layout for a new session (wide or narrow)"},
			&cli.IntFlag{Name: "seed", Usage: "Seed for a new session (0 picks a random one)"},
			&cli.IntFlag{Name: "rematches", Usage: "Rematches to play after a win"},
			&cli.IntFlag{Name: "trade-every", Usage: "Gift money every n-th turn (0 never)"},
			&cli.IntFlag{Name: "trade-amount", Usage: "Gift size (default: preset's default offer)"},
			&cli.BoolFlag{Name: "decline", Usage: "Decline offers instead of accepting them"},
			&cli.IntFlag{Name: "max-commands", Value: 1000, Usage: "Give up after this many commands"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		},
		Action: run,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "autoplay: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger := zap.NewNop()
	if cmd.Bool("debug") {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer logger.Sync()

	out := io.Writer(os.Stdout)
	if cmd.Writer != nil {
		out = cmd.Writer
	}

	client := NewClient(cmd.String("api-url"))
	if id := cmd.String("session"); id != "" {
		if _, err := client.Join(ctx, id); err != nil {
			return err
		}
	} else {
		opts := service.CreateOptions{
			ConfigID: cmd.String("preset"),
			Layout:   cmd.String("layout"),
		}
		if seed := int64(cmd.Int("seed")); seed != 0 {
			opts.Seed = &seed
		}
		info, err := client.CreateSession(ctx, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Created session %s (%s, %s board)\n", info.ID, info.ConfigName, info.Layout)
	}
	logger.Info("playing", zap.String("session", client.SessionID()))

	strategy := &Strategy{
		TradeEvery:  int(cmd.Int("trade-every")),
		TradeAmount: int(cmd.Int("trade-amount")),
		Decline:     cmd.Bool("decline"),
		Rematches:   int(cmd.Int("rematches")),
	}

	summary, err := Play(ctx, client, strategy, int(cmd.Int("max-commands")), out, logger)
	if summary != nil {
		PrintSummary(out, summary)
	}
	return err
}
