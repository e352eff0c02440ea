package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile   string
	verbosity int
	quiet     bool
	logger    *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "webscan",
	Short: "CLI web security vulnerability scanner (for authorized testing only)",
	Long: `webscan probes a target web origin with a battery of independent
vulnerability checks and aggregates the findings into a severity-classified
report. Only scan targets you are authorized to test.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".webscan")
			viper.SetConfigType("yaml")
		}
		_ = viper.ReadInConfig()

		logger = newLogger(verbosity, quiet)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colorError(err.Error()))
		os.Exit(1)
	}
}

// newLogger builds the CLI logger. Default level is warn; -v raises to
// info, -vv to debug, --quiet drops to error.
func newLogger(verbosity int, quiet bool) *zap.SugaredLogger {
	level := zapcore.WarnLevel
	switch {
	case quiet:
		level = zapcore.ErrorLevel
	case verbosity == 1:
		level = zapcore.InfoLevel
	case verbosity >= 2:
		level = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.webscan.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity (use -vv for debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except results")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(checksCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}
