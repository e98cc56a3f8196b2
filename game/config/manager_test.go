package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/money-dash/game/engine"
)

func createTestConfigDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

func createValidConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:               "Test Config",
		Description:        "Test configuration",
		StartingMoney:      80,
		WinBonus:           15,
		RematchFee:         20,
		MinOffer:           5,
		DefaultOffer:       25,
		MoneyAmounts:       []int{5, 10},
		MoneySquareDensity: 0.5,
		Players: []engine.PlayerConfig{
			{Name: "Ann", Color: "#111111"},
			{Name: "Bob", Color: "#222222"},
		},
		Welcome: "Welcome!",
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func writeRaw(t *testing.T, dir, filename, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", filename, err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestConfigDir(t)
		classic := createValidConfig()
		classic.Name = "Classic"
		writeConfigFile(t, dir, "classic", classic)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Classic" {
			t.Errorf("Expected classic preset as default, got %q", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in rules", func(t *testing.T) {
		manager, err := NewManager(createTestConfigDir(t))
		if err != nil {
			t.Fatalf("NewManager should succeed without presets, got error: %v", err)
		}
		def := manager.GetDefault()
		if def == nil {
			t.Fatal("Expected default config to be available")
		}
		if def.StartingMoney != 100 || def.RematchFee != 25 {
			t.Errorf("Expected classic rules, got %+v", def)
		}
	})

	t.Run("first valid preset when classic is missing", func(t *testing.T) {
		dir := createTestConfigDir(t)
		config := createValidConfig()
		config.Name = "Alpha"
		writeConfigFile(t, dir, "alpha", config)
		writeRaw(t, dir, "aaa.json", `{"name": ""}`)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Alpha" {
			t.Errorf("Expected 'Alpha' as default, got %q", manager.GetDefault().Name)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)

	easy := createValidConfig()
	easy.Name = "Easy"
	easy.StartingMoney = 200
	writeConfigFile(t, dir, "easy", easy)

	writeRaw(t, dir, "quick.yaml", `
name: Quick
starting_money: 40
rematch_fee: 10
min_offer: 5
default_offer: 15
players:
  - name: Red
  - name: Blue
`)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("easy")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Easy" {
			t.Errorf("Expected config name 'Easy', got '%s'", config.Name)
		}
		if config.StartingMoney != 200 {
			t.Errorf("Expected starting money 200, got %d", config.StartingMoney)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("easy.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Easy" {
			t.Errorf("Expected config name 'Easy', got '%s'", config.Name)
		}
	})

	t.Run("yaml preset with defaults filled in", func(t *testing.T) {
		config, err := manager.LoadConfig("quick")
		if err != nil {
			t.Fatalf("Failed to load yaml config: %v", err)
		}
		if config.StartingMoney != 40 {
			t.Errorf("Expected starting money 40, got %d", config.StartingMoney)
		}
		if config.WinBonus != 20 {
			t.Errorf("Expected default win bonus 20, got %d", config.WinBonus)
		}
		if len(config.MoneyAmounts) != 4 {
			t.Errorf("Expected default money amounts, got %v", config.MoneyAmounts)
		}
		if config.MoneySquareDensity != 0.3 {
			t.Errorf("Expected default density 0.3, got %g", config.MoneySquareDensity)
		}
		if config.Players[1].Name != "Blue" {
			t.Errorf("Expected player 2 'Blue', got %q", config.Players[1].Name)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("easy")
		config2, err := manager.LoadConfig("easy")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("path traversal is not found", func(t *testing.T) {
		_, err := manager.LoadConfig("../easy")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		writeRaw(t, dir, "invalid.json", `{"name": ""}`)

		_, err := manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		writeRaw(t, dir, "malformed.json", `{"name": "Malformed", invalid json}`)

		_, err := manager.LoadConfig("malformed")
		if err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)

	for _, name := range []string{"classic", "hard", "easy"} {
		config := createValidConfig()
		config.Name = name
		writeConfigFile(t, dir, name, config)
	}
	writeRaw(t, dir, "quick.yml", "name: quick\n")
	writeRaw(t, dir, "broken.json", `{"name": ""}`)
	writeRaw(t, dir, "readme.txt", "readme")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}

	want := []string{"classic", "easy", "hard", "quick"}
	if len(configList) != len(want) {
		t.Fatalf("Expected %d configs, got %d", len(want), len(configList))
	}
	for i, info := range configList {
		if info.ConfigID != want[i] {
			t.Errorf("configs[%d] = %q, want %q", i, info.ConfigID, want[i])
		}
	}
	if configList[3].Format != "yml" {
		t.Errorf("Expected yml format, got %q", configList[3].Format)
	}
	if configList[0].StartingMoney != 80 {
		t.Errorf("Expected starting money 80, got %d", configList[0].StartingMoney)
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := createTestConfigDir(t)
	hard := createValidConfig()
	hard.Name = "Hard"
	writeConfigFile(t, dir, "hard", hard)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("hard"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.GetDefault().Name != "Hard" {
		t.Errorf("Expected 'Hard' as default, got %q", manager.GetDefault().Name)
	}

	if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := createValidConfig()
	config.Name = "Saved"
	if err := manager.SaveConfig("saved", config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Errorf("Expected saved.json on disk: %v", err)
	}

	manager.RefreshCache()
	loaded, err := manager.LoadConfig("saved")
	if err != nil {
		t.Fatalf("Failed to reload saved config: %v", err)
	}
	if loaded.Name != "Saved" || loaded.StartingMoney != 80 {
		t.Errorf("Unexpected reloaded config: %+v", loaded)
	}

	bad := createValidConfig()
	bad.MinOffer = 0
	if err := manager.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestManager_RefreshCache(t *testing.T) {
	dir := createTestConfigDir(t)
	config := createValidConfig()
	config.StartingMoney = 10
	writeConfigFile(t, dir, "changeable", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	loaded, _ := manager.LoadConfig("changeable")
	if loaded.StartingMoney != 10 {
		t.Errorf("Expected initial starting money 10, got %d", loaded.StartingMoney)
	}

	config.StartingMoney = 20
	writeConfigFile(t, dir, "changeable", config)
	manager.RefreshCache()

	reloaded, _ := manager.LoadConfig("changeable")
	if reloaded.StartingMoney != 20 {
		t.Errorf("Expected reloaded starting money 20, got %d", reloaded.StartingMoney)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestConfigDir(t)

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = "Config" + string(rune('0'+i))
		writeConfigFile(t, dir, "config"+string(rune('0'+i)), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := "config" + string(rune('0'+((id%5)+1)))
			if _, err := manager.LoadConfig(name); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	if manager.Count() < 5 {
		t.Errorf("Expected at least 5 configs in cache, got %d", manager.Count())
	}
}

func TestBundledPresets(t *testing.T) {
	manager, err := NewManager(filepath.Join("..", "..", "configs"))
	if err != nil {
		t.Fatalf("Failed to open bundled presets: %v", err)
	}

	for _, name := range []string{"classic", "quick"} {
		config, err := manager.LoadConfig(name)
		if err != nil {
			t.Errorf("Bundled preset %s failed to load: %v", name, err)
			continue
		}
		if _, err := engine.NewEngine(config, engine.WithSeed(1)); err != nil {
			t.Errorf("Bundled preset %s does not start a game: %v", name, err)
		}
	}

	if manager.GetDefault().Name != "classic" {
		t.Errorf("Expected classic default, got %q", manager.GetDefault().Name)
	}
}
