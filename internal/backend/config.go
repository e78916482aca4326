package backend

import (
	"fmt"

	"monedero/internal/config"
)

// FromAppConfig converts the application config to backend config. The token
// func is supplied by the caller since it depends on the live session.
func FromAppConfig(appConfig *config.Config, token func() string) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		BaseURL: appConfig.BackendBaseURL,
		Token:   token,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// Validate validates the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case RESTBackend:
		if c.BaseURL == "" {
			return fmt.Errorf("base URL is required for rest backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		// AMQP is optional.
	case MemoryBackend:
	}

	return nil
}
