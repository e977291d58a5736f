// Package profile defines the runtime configuration of the server, loaded
// from flags and SORTED_* environment variables via viper.
package profile

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Profile is the runtime configuration. It is constructed once at startup and
// passed by dependency injection to the components that need it.
type Profile struct {
	// Mode is "dev" or "prod".
	Mode string
	// Addr is the bind address, empty for all interfaces.
	Addr string
	// Port is the HTTP listen port.
	Port int
	// Driver is the storage backend: "sqlite", "postgres" or "mysql".
	Driver string
	// DSN is the database connection string. Defaults to a local file for
	// sqlite.
	DSN string
	// Origins is the list of allowed CORS origins.
	Origins []string
	// JWKSURL is the auth provider's JWKS endpoint used to verify tokens.
	JWKSURL string
	// OpenRouterAPIKey enables the conversational agent when set.
	OpenRouterAPIKey string
	// AIModel is the OpenRouter model identifier.
	AIModel string
}

// IsDev reports whether the profile runs in dev mode.
func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Validate checks the profile for misconfiguration.
func (p *Profile) Validate() error {
	switch p.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return errors.Errorf("unsupported driver %q", p.Driver)
	}
	if p.Driver != "sqlite" && p.DSN == "" {
		return errors.Errorf("dsn is required for driver %q", p.Driver)
	}
	if p.DSN == "" {
		p.DSN = "sorted.db"
	}
	return nil
}

// GetProfile builds the profile from viper state.
func GetProfile() (*Profile, error) {
	p := &Profile{
		Mode:             viper.GetString("mode"),
		Addr:             viper.GetString("addr"),
		Port:             viper.GetInt("port"),
		Driver:           viper.GetString("driver"),
		DSN:              viper.GetString("dsn"),
		JWKSURL:          viper.GetString("jwks-url"),
		OpenRouterAPIKey: viper.GetString("openrouter-api-key"),
		AIModel:          viper.GetString("ai-model"),
	}
	for _, origin := range strings.Split(viper.GetString("origins"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			p.Origins = append(p.Origins, origin)
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ListenAddr returns the host:port the server binds to.
func (p *Profile) ListenAddr() string {
	return fmt.Sprintf("%s:%d", p.Addr, p.Port)
}
