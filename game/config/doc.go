// Package config provides rule preset management for Money Dash.
//
// The config package handles:
//   - Loading rule presets from JSON or YAML files
//   - Filling unset rules with defaults
//   - Default preset selection
//   - Preset discovery and listing
//
// Preset Format:
//
// Presets live in the configs directory as name.json, name.yaml or
// name.yml. Each preset defines:
//   - Starting money, win bonus and rematch fee
//   - Minimum and default trade offer
//   - Prize amounts and how densely prizes are placed
//   - Player names and colours, and the welcome message
//
// Rules left at zero take the engine defaults (100 starting money, 20 win
// bonus, 25 rematch fee, 10 minimum offer, 50 default offer, prizes of
// 10/15/20/25 on 30% of the tiles).
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load a specific preset
//	quick, err := manager.LoadConfig("quick")
//
//	// Default preset (classic.json, else the first valid preset, else the
//	// built-in classic rules)
//	rules := manager.GetDefault()
//
//	// List available presets
//	presets, err := manager.ListConfigs()
package config
