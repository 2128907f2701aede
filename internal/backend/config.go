package backend

import (
	"fmt"

	"pantry/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		RemoteBaseURL: appConfig.RemoteBaseURL,
		RemoteRepo:    appConfig.RemoteRepo,
		RemotePath:    appConfig.RemotePath,
		RemoteToken:   appConfig.RemoteToken,
		CacheTTL:      appConfig.CacheTTL,

		LegacySeedPath: appConfig.LegacySeedPath,
	}, nil
}

// Validate validates the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		// AMQP and the remote seed are optional

	case RemoteBackend:
		if c.RemoteRepo == "" {
			return fmt.Errorf("remote repo is required for remote backend")
		}
		if c.RemotePath == "" {
			return fmt.Errorf("remote file path is required for remote backend")
		}
		if c.RemoteToken == "" {
			return fmt.Errorf("remote token is required for remote backend")
		}

	case MemoryBackend:
		// Seed file is optional; absence means the default document.
	}

	return nil
}

// GetBackendTypes returns all valid backend types.
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend, RemoteBackend}
}
