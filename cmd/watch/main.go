// Command watch follows a Money Dash session in the terminal. It subscribes
// to the server's websocket, prints every log line with its emoji display
// text, and redraws a small board after each update.
//
// Usage:
//
//	watch --api-url http://localhost:8080 <session-id>
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"

	gorillaws "github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/money-dash/game/engine"
	"github.com/wricardo/money-dash/transport/websocket"
)

// ErrSessionDeleted is returned when the server drops the watched session.
var ErrSessionDeleted = errors.New("session deleted")

// wsURL turns the API base URL into the websocket endpoint for a session.
func wsURL(apiURL, sessionID string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid api url: %w", err)
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("session", sessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Watch prints updates for a session until ctx is done, the game is over
// (when untilOver is set) or the server goes away.
func Watch(ctx context.Context, endpoint string, out io.Writer, untilOver bool, logger *zap.Logger) error {
	conn, _, err := gorillaws.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", endpoint, err)
	}
	defer conn.Close()
	logger.Debug("websocket connected", zap.String("url", endpoint))

	// unblock the read loop on cancellation
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("websocket read: %w", err)
		}

		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("skipping malformed message", zap.Error(err))
			continue
		}

		switch msg.Event {
		case websocket.EventSessionGone:
			fmt.Fprintln(out, "Session deleted by the server")
			return ErrSessionDeleted
		case websocket.EventStateUpdate:
		default:
			logger.Debug("ignoring event", zap.String("event", msg.Event))
			continue
		}

		for _, entry := range msg.Entries {
			fmt.Fprintf(out, "%s\n", entry.Display)
		}
		if msg.State == nil {
			continue
		}
		fmt.Fprint(out, DrawBoard(msg.State))

		if untilOver && msg.State.Turn.GameOver {
			return nil
		}
	}
}

// DrawBoard renders the board as text. Rows run top to bottom in tile
// order; "1" and "2" mark the players, "$" an uncollected prize and "*" the
// finish.
func DrawBoard(state *engine.Snapshot) string {
	board := state.Board
	prizes := make(map[int]bool, len(state.MoneySquares))
	for _, sq := range state.MoneySquares {
		if !sq.Collected {
			prizes[sq.Position] = true
		}
	}

	var b strings.Builder
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			tile := row*board.Size + col
			b.WriteString("[" + cellMark(state, tile, prizes) + "]")
		}
		b.WriteByte('\n')
	}

	p1, p2 := state.Players[0], state.Players[1]
	fmt.Fprintf(&b, "%s $%d | %s $%d | game %d, turn %d",
		p1.Name, p1.Money, p2.Name, p2.Money, state.GameNumber, state.Turn.TurnNumber)
	if state.Turn.GameOver {
		fmt.Fprintf(&b, " | game over (%s)", state.Turn.GameOverReason)
	} else {
		fmt.Fprintf(&b, " | %s to play", state.Player(state.Turn.CurrentPlayer).Name)
	}
	b.WriteByte('\n')
	return b.String()
}

func cellMark(state *engine.Snapshot, tile int, prizes map[int]bool) string {
	on1 := state.Players[0].Position == tile
	on2 := state.Players[1].Position == tile
	switch {
	case on1 && on2:
		return "12"
	case on1:
		return "1 "
	case on2:
		return "2 "
	case tile == state.Board.WinningTile:
		return "* "
	case prizes[tile]:
		return "$ "
	default:
		return "  "
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Follow a Money Dash session in the terminal",
		ArgsUsage: "<session-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "Server base URL", Sources: cli.EnvVars("MONEY_DASH_API_URL")},
			&cli.BoolFlag{Name: "until-over", Usage: "Exit once the game is over"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		},
		Action: run,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	sessionID := cmd.Args().First()
	if sessionID == "" {
		return errors.New("session id is required")
	}

	logger := zap.NewNop()
	if cmd.Bool("debug") {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer logger.Sync()

	endpoint, err := wsURL(cmd.String("api-url"), sessionID)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if cmd.Writer != nil {
		out = cmd.Writer
	}
	return Watch(ctx, endpoint, out, cmd.Bool("until-over"), logger)
}
