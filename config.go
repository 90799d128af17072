package canopy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSceneConfig parses a YAML scene configuration. Colors are CSS-like
// strings ("#ff8800", "rgba(255, 136, 0, 0.5)", "hsl(32, 100%, 50%)"), cursors
// and composites are their names:
//
//	origin: {x: 40, y: 40}
//	draggable: true
//	background: "#202020"
//	cursor: crosshair
//	feedback:
//	  opacity: 0.9
//	  composite: source-over
func LoadSceneConfig(data []byte) (SceneConfig, error) {
	var cfg SceneConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SceneConfig{}, fmt.Errorf("parse scene config: %w", err)
	}
	if cfg.Width < 0 || cfg.Height < 0 {
		return SceneConfig{}, fmt.Errorf("parse scene config: negative size %dx%d", cfg.Width, cfg.Height)
	}
	if fb := cfg.Feedback; fb != nil && (fb.Opacity < 0 || fb.Opacity > 1) {
		return SceneConfig{}, fmt.Errorf("parse scene config: feedback opacity %v out of [0, 1]", fb.Opacity)
	}
	return cfg, nil
}

// LoadSceneConfigFile reads and parses the YAML scene configuration at path.
func LoadSceneConfigFile(path string) (SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SceneConfig{}, fmt.Errorf("read scene config: %w", err)
	}
	return LoadSceneConfig(data)
}
