package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is loaded once at startup and treated as immutable afterwards.
// Everything is overridable through MINGDE_* environment variables, e.g.
// MINGDE_AI_API_KEY or MINGDE_LOG_LEVEL.
type Config struct {
	Addr        string `mapstructure:"addr"`
	LogLevel    string `mapstructure:"log_level"`
	LogJSON     bool   `mapstructure:"log_json"`
	ContentDir  string `mapstructure:"content_dir"`
	TemplateDir string `mapstructure:"template_dir"`
	StaticDir   string `mapstructure:"static_dir"`

	AI AIConfig `mapstructure:"ai"`
}

// AIConfig configures the relay and its upstream provider. APIKey stays
// server-side; it is never rendered or sent to the browser.
type AIConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	APIKey           string `mapstructure:"api_key"`
	Model            string `mapstructure:"model"`
	DefaultPromptKey string `mapstructure:"default_prompt_key"`
	RelayURL         string `mapstructure:"relay_url"`
}

// Load reads configuration from the environment with baked-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MINGDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("content_dir", "content")
	v.SetDefault("template_dir", "web/templates")
	v.SetDefault("static_dir", "web/static")

	v.SetDefault("ai.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "deepseek-chat")
	v.SetDefault("ai.default_prompt_key", "DEFAULT")
	v.SetDefault("ai.relay_url", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	// The consultant calls our own relay; default to the local listener.
	if cfg.AI.RelayURL == "" {
		cfg.AI.RelayURL = fmt.Sprintf("http://127.0.0.1:%s/api/ai/chat", cfg.Addr)
	}
	return &cfg, nil
}
