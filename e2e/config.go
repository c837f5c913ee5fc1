package e2e

import "chat-hub/internal"

type Config struct {
	// E2E_SERVER_URL points at a running chat-hub, the suite is skipped without it
	ServerURL string `env:"E2E_SERVER_URL"`
	// E2E_DEBUG_JSON dumps every REST response body
	DebugJSON bool `env:"E2E_DEBUG_JSON,default=false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `env:"E2E_COLOURS,default=true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := internal.LoadConfig(&cfg)
	return cfg, err
}
