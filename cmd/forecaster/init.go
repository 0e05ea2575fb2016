package main

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/leadflow/forecaster/internal/config"
	"github.com/leadflow/forecaster/version"
)

var v *viper.Viper

// viperKeyDelimiter marks nested values in the configuration. With "..", `db..host` addresses
// `{db: {host: ...}}` while keys containing a single "." stay intact.
const viperKeyDelimiter = ".."

// portEnvAlias is the variable hosting platforms use to hand a process its port.
const portEnvAlias = "PORT"

//nolint:gochecknoinit
func init() {
	// The version of rootCmd is set in init() rather than when `rootCmd` is initialized,
	// because link-time variable assignments are not applied when package-scoped variables
	// are initialized.
	rootCmd.Version = version.Version
	registerConfig()
	rootCmd.AddCommand(forecastCmd, migrateCmd, versionCmd)
}

type configKey []string

func (c configKey) EnvName() string {
	return "FORECASTER_" + strings.ReplaceAll(strings.ToUpper(c.FlagName()), "-", "_")
}

func (c configKey) AccessPath() string {
	return strings.ReplaceAll(strings.Join(c, viperKeyDelimiter), "-", "_")
}

func (c configKey) FlagName() string {
	return strings.Join(c, "-")
}

func bind(flags *pflag.FlagSet, name configKey, value interface{}, envAliases ...string) {
	_ = v.BindEnv(append([]string{name.AccessPath(), name.EnvName()}, envAliases...)...)
	_ = v.BindPFlag(name.AccessPath(), flags.Lookup(name.FlagName()))
	v.SetDefault(name.AccessPath(), value)
}

func registerString(flags *pflag.FlagSet, name configKey, value string, usage string) {
	flags.String(name.FlagName(), value, usage)
	bind(flags, name, value)
}

func registerBool(flags *pflag.FlagSet, name configKey, value bool, usage string) {
	flags.Bool(name.FlagName(), value, usage)
	bind(flags, name, value)
}

func registerInt(
	flags *pflag.FlagSet, name configKey, value int, usage string, envAliases ...string,
) {
	flags.Int(name.FlagName(), value, usage)
	bind(flags, name, value, envAliases...)
}

func registerFloat64(flags *pflag.FlagSet, name configKey, value float64, usage string) {
	flags.Float64(name.FlagName(), value, usage)
	bind(flags, name, value)
}

func registerDuration(flags *pflag.FlagSet, name configKey, value config.Duration, usage string) {
	registerString(flags, name, time.Duration(value).String(), usage)
}

func registerConfig() {
	v = viper.NewWithOptions(viper.KeyDelimiter(viperKeyDelimiter))
	v.SetTypeByDefaultValue(true)

	defaults := config.DefaultConfig()

	// Flags are persistent so that subcommands read the same configuration as the server.
	flags := rootCmd.PersistentFlags()
	name := func(components ...string) configKey { return components }

	registerString(flags, name("config-file"),
		defaults.ConfigFile, "location of config file")

	registerInt(flags, name("port"),
		defaults.Port, "server port", portEnvAlias)
	registerBool(flags, name("debug"),
		defaults.Debug, "enable debug logging and query tracing")
	registerString(flags, name("templates-dir"),
		defaults.TemplatesDir, "directory overriding the built-in page templates")

	registerString(flags, name("log", "level"),
		defaults.Log.Level, "choose logging level from [trace, debug, info, warn, error, fatal]")
	registerBool(flags, name("log", "color"),
		defaults.Log.Color, "output logs in color")
	registerString(flags, name("log", "format"),
		defaults.Log.Format, "log format, text or json")

	registerFloat64(flags, name("forecast", "default-elasticity"),
		defaults.Forecast.DefaultElasticity, "elasticity used when a request does not set one")

	registerFloat64(flags, name("rate-limit", "requests-per-second"),
		defaults.RateLimit.RequestsPerSecond, "API requests per second per client, 0 to disable")
	registerInt(flags, name("rate-limit", "burst"),
		defaults.RateLimit.Burst, "API request burst per client")

	registerBool(flags, name("history", "enabled"),
		defaults.History.Enabled, "record computed forecasts")
	registerInt(flags, name("history", "max-entries"),
		defaults.History.MaxEntries, "forecasts kept by the in-memory history")
	registerInt(flags, name("history", "cache-size"),
		defaults.History.CacheSize, "forecasts cached in front of the database history")
	registerDuration(flags, name("history", "retention"),
		defaults.History.Retention, "how long forecasts are kept")
	registerDuration(flags, name("history", "prune-interval"),
		defaults.History.PruneInterval, "how often expired forecasts are deleted")

	registerString(flags, name("db", "user"),
		defaults.DB.User, "database username")
	registerString(flags, name("db", "password"),
		defaults.DB.Password, "database password")
	registerString(flags, name("db", "host"),
		defaults.DB.Host, "database host, history is kept in memory when empty")
	registerString(flags, name("db", "port"),
		defaults.DB.Port, "database port")
	registerString(flags, name("db", "name"),
		defaults.DB.Name, "database name")
	registerString(flags, name("db", "ssl-mode"),
		defaults.DB.SSLMode, "database ssl mode (disable, verify-ca, ...)")
	registerString(flags, name("db", "ssl-root-cert"),
		defaults.DB.SSLRootCert, "database ssl root cert path")
	registerInt(flags, name("db", "max-open-conns"),
		defaults.DB.MaxOpenConns, "maximum open database connections")
}
