package sources

import (
	"time"

	"github.com/mtgtools/arbitro-go/pkg/logging"
)

// GetLoggerFromConfig extracts the logger from a config map or returns a noop
// logger. Adapters use this to pick up the logger injected by main.
func GetLoggerFromConfig(config map[string]interface{}) *logging.Logger {
	if loggerInterface, ok := config["logger"]; ok {
		if logger, ok := loggerInterface.(*logging.Logger); ok {
			return logger
		}
	}
	return logging.NewNoopLogger()
}

// GetStringFromConfig retrieves a string value with a default.
func GetStringFromConfig(config map[string]interface{}, key, defaultValue string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

// GetIntFromConfig retrieves an integer with a default. YAML decoding may
// surface numbers as int or float64.
func GetIntFromConfig(config map[string]interface{}, key string, defaultValue int) int {
	switch v := config[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultValue
	}
}

// GetDurationFromConfig retrieves a duration expressed in milliseconds.
func GetDurationFromConfig(config map[string]interface{}, key string, defaultValue time.Duration) time.Duration {
	ms := GetIntFromConfig(config, key, -1)
	if ms < 0 {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}
