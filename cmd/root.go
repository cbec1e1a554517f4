package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jsphweid/keytune/config"
	"github.com/jsphweid/keytune/constants"
	"github.com/jsphweid/keytune/policy"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	grammarPath string
	tempo       float64
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&grammarPath, "grammar", "", "JSON grammar file (default canonical grammar)")
	rootCmd.PersistentFlags().Float64VarP(&tempo, "tempo", "t", constants.DefaultTempo, "tempo in quarter notes per minute")
}

var rootCmd = &cobra.Command{
	Use:   "keytune",
	Short: "Turns typed text into melodies",
	Long: `keytune compiles text typed on a qwerty keyboard into notes, rests and
chords, plays it on a MIDI output and exports it as a MIDI file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger := log.FromContext(cmd.Context())
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "keytune",
	})
	level, err := log.ParseLevel(constants.GetLogLevel())
	if err != nil {
		logger.Warn("unknown log level, using info", "level", constants.GetLogLevel())
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func loadGrammar() (policy.Grammar, error) {
	return config.Load(grammarPath)
}

func Execute() {
	ctx := log.WithContext(context.Background(), newLogger())
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}
