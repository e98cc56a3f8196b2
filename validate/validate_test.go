package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/money-dash/game/engine"
)

func writePreset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write preset: %v", err)
	}
	return path
}

func hasError(result ValidationResult, substr string) bool {
	for _, err := range result.Errors {
		if strings.Contains(err, substr) {
			return true
		}
	}
	return false
}

const validPreset = `{
	"name": "Test Preset",
	"description": "Test rules",
	"starting_money": 100,
	"win_bonus": 20,
	"rematch_fee": 25,
	"min_offer": 10,
	"default_offer": 50,
	"money_amounts": [10, 15, 20, 25],
	"money_square_density": 0.3,
	"players": [
		{"name": "Ann", "color": "#ff0000"},
		{"name": "Bob", "color": "#0000ff"}
	]
}`

func TestValidateConfig_ValidConfig(t *testing.T) {
	path := writePreset(t, "test.json", validPreset)

	result := validateConfig(path)
	if !result.Valid {
		t.Errorf("Expected valid preset, but got errors: %v", result.Errors)
	}
	if result.File != "test.json" {
		t.Errorf("Expected file name test.json, got %s", result.File)
	}
	if !hasError(result, "✓ Name: Test Preset") {
		t.Errorf("Expected name info line, got %v", result.Errors)
	}
}

func TestValidateConfig_YAML(t *testing.T) {
	path := writePreset(t, "quick.yaml", `name: quick
starting_money: 40
win_bonus: 10
rematch_fee: 10
min_offer: 5
default_offer: 15
money_amounts: [20, 30]
money_square_density: 0.5
`)

	result := validateConfig(path)
	if !result.Valid {
		t.Errorf("Expected valid preset, but got errors: %v", result.Errors)
	}
}

func TestValidateConfig_DefaultsFillMissingFields(t *testing.T) {
	path := writePreset(t, "minimal.json", `{"name": "minimal"}`)

	result := validateConfig(path)
	if !result.Valid {
		t.Errorf("Expected defaults to make the preset valid, got %v", result.Errors)
	}
	if !hasError(result, "Starting money: $100") {
		t.Errorf("Expected default starting money, got %v", result.Errors)
	}
}

func TestValidateConfig_InvalidJSON(t *testing.T) {
	path := writePreset(t, "bad.json", `{"name": "test", invalid json}`)

	result := validateConfig(path)
	if result.Valid {
		t.Error("Expected invalid preset due to bad JSON")
	}
	if !hasError(result, "Invalid preset") {
		t.Errorf("Expected 'Invalid preset' error, got %v", result.Errors)
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig("/non/existent/file.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasError(result, "Failed to read file") {
		t.Error("Expected 'Failed to read file' error")
	}
}

func TestValidateConfig_MissingName(t *testing.T) {
	path := writePreset(t, "noname.json", `{"starting_money": 100}`)

	result := validateConfig(path)
	if result.Valid {
		t.Error("Expected invalid preset without a name")
	}
	if !hasError(result, "name is required") {
		t.Errorf("Expected name error, got %v", result.Errors)
	}
}

func TestValidateConfig_RuleLimits(t *testing.T) {
	tests := []struct {
		name    string
		preset  string
		wantErr string
	}{
		{
			name:    "negative prize",
			preset:  `{"name": "x", "money_amounts": [10, -5]}`,
			wantErr: "money_amounts[1] must be positive",
		},
		{
			name:    "default below minimum",
			preset:  `{"name": "x", "min_offer": 20, "default_offer": 10}`,
			wantErr: "default_offer (10) must be at least min_offer (20)",
		},
		{
			name:    "three seats",
			preset:  `{"name": "x", "players": [{"name": "a"}, {"name": "b"}, {"name": "c"}]}`,
			wantErr: "exactly 2 seats",
		},
		{
			name:    "density too high",
			preset:  `{"name": "x", "money_square_density": 1.5}`,
			wantErr: "money_square_density",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateConfig(writePreset(t, "p.json", tt.preset))
			if result.Valid {
				t.Fatal("Expected invalid preset")
			}
			if !hasError(result, tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, result.Errors)
			}
		})
	}
}

func TestValidatePlayability_Valid(t *testing.T) {
	result := validatePlayability(engine.DefaultConfig())
	if !result.Valid {
		t.Errorf("Expected classic rules to be playable, got %v", result.Errors)
	}
	if !hasError(result, "narrow board: 9 tiles, 2 prizes") {
		t.Errorf("Expected narrow board summary, got %v", result.Errors)
	}
	if !hasError(result, "wide board: 16 tiles, 4 prizes") {
		t.Errorf("Expected wide board summary, got %v", result.Errors)
	}
}

func TestValidatePlayability_OfferAboveStartingMoney(t *testing.T) {
	config := engine.DefaultConfig()
	config.StartingMoney = 30

	result := validatePlayability(config)
	if result.Valid {
		t.Error("Expected default offer above starting money to be rejected")
	}
	if !hasError(result, "default_offer ($50) exceeds starting_money ($30)") {
		t.Errorf("Unexpected errors: %v", result.Errors)
	}
}

func TestValidatePlayability_UnpayableRematch(t *testing.T) {
	config := engine.DefaultConfig()
	config.RematchFee = 500

	result := validatePlayability(config)
	if result.Valid {
		t.Error("Expected unpayable rematch fee to be rejected")
	}
	if !hasError(result, "rematch_fee ($500)") {
		t.Errorf("Unexpected errors: %v", result.Errors)
	}
}

func TestValidatePlayability_PrizesEverywhere(t *testing.T) {
	config := engine.DefaultConfig()
	config.MoneySquareDensity = 1

	result := validatePlayability(config)
	if result.Valid {
		t.Error("Expected full prize coverage to be rejected")
	}
	if !hasError(result, "covers every tile of the narrow board") {
		t.Errorf("Unexpected errors: %v", result.Errors)
	}
}

func TestPrizeCount(t *testing.T) {
	wide := engine.NewBoard(engine.LayoutWide)
	narrow := engine.NewBoard(engine.LayoutNarrow)

	if got := prizeCount(wide, 0.3); got != 4 {
		t.Errorf("wide prizes = %d, want 4", got)
	}
	if got := prizeCount(narrow, 0.3); got != 2 {
		t.Errorf("narrow prizes = %d, want 2", got)
	}
	if got := prizeCount(narrow, 0.01); got != 1 {
		t.Errorf("tiny density should still place one prize, got %d", got)
	}
}

func TestPresetFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.json", "c.yml", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := presetFiles(dir)
	if err != nil {
		t.Fatalf("presetFiles: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Expected 3 preset files, got %v", files)
	}
	if filepath.Base(files[0]) != "a.json" {
		t.Errorf("Expected sorted output, got %v", files)
	}
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	ok := report(&buf, []ValidationResult{
		{File: "good.json", Valid: true, Errors: []string{"✓ Name: good"}},
		{File: "bad.json", Valid: false, Errors: []string{"name is required"}},
	})

	if ok {
		t.Error("Expected report to flag the invalid preset")
	}
	out := buf.String()
	for _, want := range []string{"✅ VALID", "❌ INVALID", "❌ name is required", "Some presets have errors"} {
		if !strings.Contains(out, want) {
			t.Errorf("Report missing %q:\n%s", want, out)
		}
	}
}

func TestRepositoryPresetsAreValid(t *testing.T) {
	files, err := presetFiles(filepath.Join("..", "configs"))
	if err != nil {
		t.Fatalf("presetFiles: %v", err)
	}
	if len(files) == 0 {
		t.Skip("no presets shipped")
	}
	for _, file := range files {
		if result := validateConfig(file); !result.Valid {
			t.Errorf("%s is invalid: %v", result.File, result.Errors)
		}
	}
}
