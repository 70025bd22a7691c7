package uplink

import (
	"errors"
	"log/slog"

	"github.com/upwatch/uplink/internal/auth"
	"github.com/upwatch/uplink/internal/store"
)

// gwConfig holds mutable state during Gateway construction.
type gwConfig struct {
	port     int
	origins  []string
	logger   *slog.Logger
	store    store.Store
	secrets  auth.Secrets
	handlers map[string]EventHandler
}

// Option configures a [Gateway] during construction.
//
// Option implements the functional options pattern. Options return an
// error if validation fails.
//
// Built-in options: [WithStore], [WithSecrets], [WithPort],
// [WithAllowedOrigins], [WithLogger], [WithEventHandler].
type Option func(*gwConfig) error

// WithStore sets the data store backing dashboard snapshots and alert
// website resolution. Required.
//
// Returns an error if the store is nil.
func WithStore(st Store) Option {
	return func(cfg *gwConfig) error {
		if st == nil {
			return errors.New("store cannot be nil")
		}
		cfg.store = st
		return nil
	}
}

// WithSecrets sets the per-domain token verification secrets. Required.
//
// Domains whose secret is empty are skipped during authentication, so a
// deployment without contributors can simply leave that secret blank.
// Returns an error if all three secrets are empty.
func WithSecrets(s Secrets) Option {
	return func(cfg *gwConfig) error {
		if s == (auth.Secrets{}) {
			return errors.New("at least one domain secret must be set")
		}
		cfg.secrets = s
		return nil
	}
}

// WithPort sets the HTTP port for the websocket and ingest endpoints.
//
// Defaults to 4000 if not specified. Port 0 binds an ephemeral port,
// which is useful in tests.
//
// Returns an error if the port is outside the valid range (0-65535).
func WithPort(port int) Option {
	return func(cfg *gwConfig) error {
		if port < 0 || port > 65535 {
			return errors.New("port must be between 0 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithAllowedOrigins sets the Origin header values allowed to open
// websocket connections.
//
// Without this option only same-origin browsers may connect. Pass "*" to
// allow any origin (demos and tests).
func WithAllowedOrigins(origins ...string) Option {
	return func(cfg *gwConfig) error {
		cfg.origins = append(cfg.origins, origins...)
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Gateway.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *gwConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithEventHandler registers a custom protocol event before the gateway
// is created. Equivalent to calling [Gateway.RegisterEvent] after [New];
// later registrations for the same name replace earlier ones.
func WithEventHandler(name string, handler EventHandler) Option {
	return func(cfg *gwConfig) error {
		if name == "" {
			return errors.New("event name cannot be empty")
		}
		cfg.handlers[name] = handler
		return nil
	}
}
