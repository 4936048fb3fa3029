package helpers

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetFlagsFromEnv(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	bucket := fs.String("bucket", "", "")
	months := fs.Int("forecast-months", 3, "")
	wide := fs.Bool("enable-wide-upload", false, "")

	t.Setenv("COST_FORECASTER_BUCKET", "from-env")
	t.Setenv("COST_FORECASTER_FORECAST_MONTHS", "12")
	t.Setenv("COST_FORECASTER_ENABLE_WIDE_UPLOAD", "true")

	require.NoError(t, fs.Parse([]string{"--bucket=from-flag"}))
	require.NoError(t, SetFlagsFromEnv(fs, "COST_FORECASTER"))

	assert.Equal(t, "from-flag", *bucket)
	assert.Equal(t, 12, *months)
	assert.True(t, *wide)
	assert.True(t, fs.Changed("forecast-months"))
}

func TestSetFlagsFromEnvInvalidValue(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("forecast-months", 3, "")
	t.Setenv("COST_FORECASTER_FORECAST_MONTHS", "many")

	require.NoError(t, fs.Parse(nil))
	err := SetFlagsFromEnv(fs, "COST_FORECASTER")
	assert.ErrorContains(t, err, `invalid value "many" for COST_FORECASTER_FORECAST_MONTHS`)
}

func TestEnvVarName(t *testing.T) {
	assert.Equal(t, "COST_FORECASTER_REQUESTS_PER_SECOND", EnvVarName("COST_FORECASTER", "requests-per-second"))
}

func TestSetupLogger(t *testing.T) {
	tests := map[string]struct {
		level       string
		format      string
		expectedErr string
	}{
		"text":          {level: "debug", format: "text"},
		"json":          {level: "warn", format: "json"},
		"default":       {level: "info"},
		"bad level":     {level: "loud", format: "text", expectedErr: "invalid log level: loud"},
		"bad formatter": {level: "info", format: "xml", expectedErr: "invalid log format: xml"},
	}

	for testName, tt := range tests {
		testName := testName
		tt := tt
		t.Run(testName, func(t *testing.T) {
			logger, err := SetupLogger(tt.level, tt.format, log.Fields{"app": "cost-forecaster"})
			if tt.expectedErr != "" {
				assert.EqualError(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			entry, ok := logger.(*log.Entry)
			require.True(t, ok)
			assert.Equal(t, "cost-forecaster", entry.Data["app"])
			expectedLevel, _ := log.ParseLevel(tt.level)
			assert.Equal(t, expectedLevel, entry.Logger.GetLevel())
		})
	}
}
