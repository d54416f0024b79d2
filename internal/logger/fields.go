package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldLoadID is the structured log field key correlating all entries of one load operation.
	FieldLoadID = "load_id"
	// FieldLoadKind is the structured log field key naming the load operation.
	FieldLoadKind = "load_kind"
	// FieldProvince is the structured log field key for the province filter.
	FieldProvince = "province"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced with a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// LoadFields returns the fields describing one load operation.
func LoadFields(loadID, kind, province string) []zap.Field {
	return StringFields(
		StringField{Key: FieldLoadID, Value: loadID},
		StringField{Key: FieldLoadKind, Value: kind},
		StringField{Key: FieldProvince, Value: province},
	)
}

// WithLoad attaches the load fields to the provided logger.
func WithLoad(logger *zap.Logger, loadID, kind, province string) *zap.Logger {
	return WithFields(logger, LoadFields(loadID, kind, province)...)
}
