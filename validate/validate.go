// Command validate provides a small CLI that validates rule presets (JSON or
// YAML) in a configs directory. It checks:
//   - The file decodes and carries the required fields
//   - Rule limits enforced by the engine (money, offers, prize amounts)
//   - Player seats (exactly two named seats, or none for the defaults)
//   - Playability on both boards: prizes get placed, a winner can afford a
//     rematch, and the default offer can actually be sent
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/money-dash/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	if _, err := os.Stat(filePath); err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	if err := cleanenv.ReadConfig(filePath, &config); err != nil {
		result.fail("Invalid preset: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	playability := validatePlayability(&config)
	if !playability.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, playability.Errors...)

	if result.Valid {
		result.info("Name: %s", config.Name)
		result.info("Starting money: $%d", config.StartingMoney)
		result.info("Win bonus: $%d, rematch fee: $%d", config.WinBonus, config.RematchFee)
		result.info("Offers: min $%d, default $%d", config.MinOffer, config.DefaultOffer)
		result.info("Prize amounts: %v", config.MoneyAmounts)
	}

	return result
}

// validatePlayability checks that a preset that passes the engine's limits
// also produces a game worth playing on both layouts.
func validatePlayability(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	if config.DefaultOffer > config.StartingMoney {
		result.fail("default_offer ($%d) exceeds starting_money ($%d): the first draft can never be sent as is",
			config.DefaultOffer, config.StartingMoney)
	}
	if config.MinOffer > config.StartingMoney {
		result.fail("min_offer ($%d) exceeds starting_money ($%d): no offer can ever be sent",
			config.MinOffer, config.StartingMoney)
	}
	if config.StartingMoney+config.WinBonus < config.RematchFee {
		result.fail("rematch_fee ($%d) exceeds what a winner can hold without prizes ($%d)",
			config.RematchFee, config.StartingMoney+config.WinBonus)
	}

	for _, mode := range []engine.LayoutMode{engine.LayoutNarrow, engine.LayoutWide} {
		board := engine.NewBoard(mode)
		prizes := prizeCount(board, config.MoneySquareDensity)
		if prizes >= board.WinningTile {
			result.fail("money_square_density %g covers every tile of the %s board", config.MoneySquareDensity, mode)
			continue
		}
		result.info("%s board: %d tiles, %d prizes, up to $%d on the table",
			mode, board.TotalSquares, prizes, prizes*maxAmount(config.MoneyAmounts))
	}

	return result
}

// prizeCount mirrors how many money squares the engine deals on a board.
func prizeCount(board engine.Board, density float64) int {
	candidates := board.TotalSquares - 1
	count := int(density * float64(candidates))
	if count < 1 {
		count = 1
	}
	if count > candidates {
		count = candidates
	}
	return count
}

func maxAmount(amounts []int) int {
	best := 0
	for _, a := range amounts {
		if a > best {
			best = a
		}
	}
	return best
}

// presetFiles lists the preset files in dir, sorted by name.
func presetFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// report prints results and reports whether all of them are valid.
func report(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Fprintln(w, "  ❌ "+err)
				}
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All presets are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some presets have errors")
	}
	return allValid
}

// main validates every preset in the configs directory, printing a concise
// report and exiting with non-zero status if any are invalid.
func main() {
	app := &cli.Command{
		Name:      "validate",
		Usage:     "Validate Money Dash rule presets",
		ArgsUsage: "[file...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "../configs", Usage: "Directory containing rule presets", Sources: cli.EnvVars("CONFIG_DIR")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = presetFiles(cmd.String("dir"))
				if err != nil {
					return fmt.Errorf("error finding preset files: %w", err)
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("no presets found in %s", cmd.String("dir"))
			}

			results := make([]ValidationResult, 0, len(files))
			for _, file := range files {
				results = append(results, validateConfig(file))
			}
			if !report(os.Stdout, results) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
