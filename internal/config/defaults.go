package config

import "time"

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:          "0.0.0.0:9001",
			Path:             "/sync",
			ProtocolVersion:  1,
			MaxMessageBytes:  512 * 1024 * 1024,
			HandshakeTimeout: Duration(10 * time.Second),
		},
		Auth: AuthConfig{
			Tokens: nil,
		},
		Logging: LogConfig{
			Level:         "info",
			Format:        "json",
			Output:        "stdout",
			DispatchDebug: false,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
