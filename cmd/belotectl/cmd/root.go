package cmd

import (
	"fmt"
	"strings"

	"github.com/jimmmmothy/Belote-Enterprise/internal/config"
	"github.com/jimmmmothy/Belote-Enterprise/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. BELOTE_LOG_LEVEL.
const EnvPrefix = "BELOTE"

const (
	keyConfigFile     = "config"
	keyGameConfig     = "game-config"
	keyLogLevel       = "log-level"
	keyLogFormat      = "log-format"
	keySeatSecret     = "seat-token-secret"
	keyServeAddr      = "addr"
	keySimulateGames  = "games"
	keySimulateRounds = "rounds"
	keySimulateSeed   = "seed"
	keySimulateLevel  = "level"
	keySimulateJSON   = "json"
	keyTokenPlayer    = "player"
	keyTokenGame      = "game"
	keyTokenSeat      = "seat"
)

// NewRootCmd creates the belotectl command tree. Every flag can also be set
// from the environment or from the file named by --config.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "belotectl",
		Short:         "Belote game server and tooling",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if path := v.GetString(keyConfigFile); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(keyConfigFile, "", "config file (yaml, json or toml)")
	flags.String(keyGameConfig, "", "game config JSON; built-in defaults when empty")
	flags.String(keyLogLevel, "info", "log level")
	flags.String(keyLogFormat, "text", "log format: text or json")
	flags.String(keySeatSecret, "", "secret for signing seat tokens")

	rootCmd.AddCommand(
		newServeCmd(v),
		newSimulateCmd(v),
		newTokenCmd(v),
	)
	return rootCmd
}

func newLogger(cmd *cobra.Command, v *viper.Viper) (*logging.Logger, error) {
	return logging.NewWithConfig(cmd.ErrOrStderr(), v.GetString(keyLogLevel), v.GetString(keyLogFormat))
}

func gameConfig(v *viper.Viper) (*config.GameConfig, error) {
	path := v.GetString(keyGameConfig)
	if path == "" {
		return config.Defaults(), nil
	}
	return config.ReadGameConfig(path)
}
