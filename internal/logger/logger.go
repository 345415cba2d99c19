package logger

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Fields map[string]any

var log = zerolog.New(os.Stderr).With().Timestamp().Logger()

var sensitiveKeys = map[string]struct{}{
	"channelkey":   {},
	"channel_key":  {},
	"token":        {},
	"clientemail":  {},
	"client_email": {},
	"email":        {},
}

func Info(message string, fields Fields) {
	log.Info().Fields(sanitizeFields(fields)).Msg(message)
}

func Error(message string, err error, fields Fields) {
	log.Error().Err(err).Fields(sanitizeFields(fields)).Msg(message)
}

// SanitizePayload masks sensitive keys anywhere inside an arbitrary
// payload before it reaches a log line.
func SanitizePayload(payload any) any {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "<unavailable>"
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "<unavailable>"
	}

	return sanitizeValue(data)
}

func sanitizeFields(fields Fields) map[string]any {
	if fields == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if isSensitiveKey(key) {
			out[key] = "******"
			continue
		}
		out[key] = sanitizeValue(value)
	}
	return out
}

func sanitizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, inner := range typed {
			if isSensitiveKey(key) {
				out[key] = "******"
				continue
			}
			out[key] = sanitizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			out = append(out, sanitizeValue(item))
		}
		return out
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "-", ""))
	_, ok := sensitiveKeys[normalized]
	return ok
}
