package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghodss/yaml"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/leadflow/forecaster/internal"
	"github.com/leadflow/forecaster/internal/config"
	"github.com/leadflow/forecaster/internal/history"
	"github.com/leadflow/forecaster/pkg/logger"
	"github.com/leadflow/forecaster/version"
)

const defaultConfigPath = "/etc/forecaster/forecaster.yaml"

// logStoreSize is how many log events to keep in memory.
const logStoreSize = 25000

var rootCmd = &cobra.Command{
	Use:   "forecaster",
	Short: "Serve the marketing channel lead forecaster",
	Args:  cobra.NoArgs,
	// main logs the error of a failed subcommand.
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRoot(); err != nil {
			log.Error(errorMessage(err))
			os.Exit(1)
		}
	},
}

func runRoot() error {
	logStore := logger.NewLogBuffer(logStoreSize)
	log.AddHook(logStore)

	cfg, err := initializeConfig()
	if err != nil {
		return err
	}

	printableConfig, err := cfg.Printable()
	if err != nil {
		return err
	}
	log.Infof("forecaster configuration: %s", printableConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := history.Open(ctx, cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				log.WithError(err).Error("error closing forecast history")
			}
		}()
	}

	s, err := internal.New(version.Version, logStore, cfg, store, clockwork.NewRealClock())
	if err != nil {
		return err
	}
	return s.Run(ctx)
}

// initializeConfig returns the validated configuration populated from config
// file, environment variables, and command line flags.
func initializeConfig() (*config.Config, error) {
	// Fetch an initial config to get the config file path and read its settings into Viper.
	initialConfig, err := getConfig(v.AllSettings())
	if err != nil {
		return nil, err
	}

	bs, err := readConfigFile(initialConfig.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err = mergeConfigBytesIntoViper(bs); err != nil {
		return nil, err
	}

	// Now call viper.AllSettings() again to get the full config, containing all values from CLI flags,
	// environment variables, and the configuration file.
	cfg, err := getConfig(v.AllSettings())
	if err != nil {
		return nil, err
	}

	if err := cfg.Check(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readConfigFile(configPath string) ([]byte, error) {
	isDefault := configPath == ""
	if isDefault {
		configPath = defaultConfigPath
	}

	var err error
	if _, err = os.Stat(configPath); err != nil {
		if isDefault && os.IsNotExist(err) {
			log.Debugf("no configuration file at %s, skipping", configPath)
			return nil, nil
		}
		return nil, errors.Wrap(err, "error finding configuration file")
	}
	bs, err := os.ReadFile(configPath) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "error reading configuration file")
	}
	return bs, nil
}

func mergeConfigBytesIntoViper(bs []byte) error {
	var configMap map[string]interface{}
	if err := yaml.Unmarshal(bs, &configMap); err != nil {
		return errors.Wrap(err, "error unmarshal yaml configuration file")
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return errors.Wrap(err, "error merge configuration to viper")
	}
	return nil
}

func getConfig(configMap map[string]interface{}) (*config.Config, error) {
	cfg := config.DefaultConfig()
	bs, err := json.Marshal(configMap)
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal configuration map into json bytes")
	}
	if err = yaml.Unmarshal(bs, cfg, yaml.DisallowUnknownFields); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal configuration")
	}

	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}
