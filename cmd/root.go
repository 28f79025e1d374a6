package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Mohsinsiddi/dmint/internal/config"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/dmint/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	log         *zap.Logger
	networkFlag string
	walletFlag  string
	verbose     bool
	assumeYes   bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "dmint",
	Short: "Deposit & mint dApp client",
	Long: `dmint drives a Token / DepositAndMint contract pair from the terminal.

  dmint publish    deploy both contracts and write the deployment directory
  dmint app        interactive page: balances, mint, approve + deposit
  dmint balances   print the three balances of the connected wallet
  dmint mint       mint the fixed amount to the connected wallet
  dmint deposit    approve then deposit tokens

The signing key lives in the OS keychain; add one with ` + "`dmint wallet import`" + `.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return errors.Wrap(err, "loading config")
		}
		if log == nil {
			log, err = newLogger(verbose, "", zap.WarnLevel)
			if err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync() //nolint:errcheck
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errLine(err))
		os.Exit(1)
	}
}

// newLogger builds the CLI logger at level, or debug on --verbose. A
// non-empty path sends output to that file instead of stderr.
func newLogger(verbose bool, path string, level zapcore.Level) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Level = zap.NewAtomicLevelAt(level)
	if verbose {
		zc = zap.NewDevelopmentConfig()
	}
	if path != "" {
		zc.OutputPaths = []string{path}
		zc.ErrorOutputPaths = []string{path}
	}
	l, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	return l, nil
}

func init() {
	// DMINT_CONFIG_DIR env var overrides the --config default.
	if envDir := os.Getenv("DMINT_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.dmint)")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "network name (default: config default_network)")
	rootCmd.PersistentFlags().StringVarP(&walletFlag, "wallet", "w", "", "wallet name (default: config default_wallet)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every prompt")

	rootCmd.AddCommand(
		appCmd,
		balancesCmd,
		mintCmd,
		depositCmd,
		publishCmd,
		walletCmd,
		networkCmd,
		configCmd,
		contractsCmd,
		convertCmd,
	)
}
