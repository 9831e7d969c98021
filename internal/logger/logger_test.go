package logger

import (
	"testing"

	"github.com/Naenyn/FeedbackPortlet/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGetPgxTraceLogLevel(t *testing.T) {
	tests := []struct {
		level zerolog.Level
		want  int
	}{
		{zerolog.TraceLevel, 6},
		{zerolog.DebugLevel, 5},
		{zerolog.InfoLevel, 4},
		{zerolog.WarnLevel, 3},
		{zerolog.ErrorLevel, 2},
		{zerolog.Disabled, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetPgxTraceLogLevel(tt.level), tt.level.String())
	}
}

func TestNewLoggerService_WithoutLicense(t *testing.T) {
	service := NewLoggerService(config.DefaultObservabilityConfig())
	assert.Nil(t, service.GetApplication())
	service.Shutdown()

	var nilService *LoggerService
	assert.Nil(t, nilService.GetApplication())
}

func TestNewLoggerWithService_Level(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"

	logger := NewLoggerWithService(cfg, nil)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	cfg.Logging.Level = ""
	cfg.Environment = "production"
	logger = NewLogger(cfg)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestWithTraceContext_NilTransaction(t *testing.T) {
	base := zerolog.Nop()
	assert.Equal(t, base, WithTraceContext(base, nil))
}
