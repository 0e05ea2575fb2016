package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Resolve())
	require.NoError(t, c.Check())
	require.Equal(t, DefaultPort, c.Port)
	require.False(t, c.DB.Enabled())
	require.True(t, c.RateLimit.Enabled())
}

func TestConfigCheckCollectsErrors(t *testing.T) {
	c := DefaultConfig()
	c.Port = 0
	c.Forecast.DefaultElasticity = 1.5
	c.Log.Level = "loud"
	c.DB.Host = "db.internal"
	c.DB.SSLMode = "sometimes"

	err := c.Check()
	require.Error(t, err)
	require.Contains(t, err.Error(), "4 checks failed")
	require.Contains(t, err.Error(), "\n\tport: ")
	require.Contains(t, err.Error(), "\n\tforecast: forecast default_elasticity")
	require.Contains(t, err.Error(), "\n\tlog: ")
	require.Contains(t, err.Error(), "\n\tdb: db ssl_mode")
}

func TestDisabledHistorySkipsChecks(t *testing.T) {
	c := DefaultConfig()
	c.History = HistoryConfig{Enabled: false}
	require.NoError(t, c.Check())
}

func TestResolveDebug(t *testing.T) {
	c := DefaultConfig()
	c.Debug = true
	c.TemplatesDir = "templates"
	require.NoError(t, c.Resolve())
	require.Equal(t, "debug", c.Log.Level)
	require.True(t, len(c.TemplatesDir) > len("templates"))
}

func TestPrintableHidesPassword(t *testing.T) {
	c := DefaultConfig()
	c.DB.Password = "hunter2"

	bs, err := c.Printable()
	require.NoError(t, err)
	require.NotContains(t, string(bs), "hunter2")
	require.Contains(t, string(bs), "********")
	require.Equal(t, "hunter2", c.DB.Password)
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"90m"`), &d))
	require.Equal(t, 90*time.Minute, time.Duration(d))

	require.NoError(t, json.Unmarshal([]byte(`30`), &d))
	require.Equal(t, 30*time.Second, time.Duration(d))

	require.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	require.Error(t, json.Unmarshal([]byte(`true`), &d))

	bs, err := json.Marshal(Duration(2 * time.Hour))
	require.NoError(t, err)
	require.Equal(t, `"2h0m0s"`, string(bs))
}
