package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/jsphweid/keytune/constants"
	"github.com/jsphweid/keytune/export"
	"github.com/jsphweid/keytune/midi"
	"github.com/jsphweid/keytune/notation"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var outPath string

func init() {
	exportCmd.Flags().StringVarP(&outPath, "out", "o", constants.DefaultExportFile, "output file")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export TEXT",
	Short: "Writes a string as a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.FromContext(cmd.Context())
		g, err := loadGrammar()
		if err != nil {
			return err
		}
		seq := notation.Compile(args[0], g)
		if n := export.TrailingRests(seq); n > 0 {
			logger.Warn("trailing rests are not exported", "count", n)
		}

		b, err := export.Export(seq, tempo, midi.NewEncoder())
		if err != nil {
			return err
		}
		if err := os.WriteFile(outPath, b, 0o644); err != nil {
			return errors.Wrapf(err, "could not write %s", outPath)
		}
		logger.Info("exported", "file", outPath, "events", len(seq), "bytes", len(b))
		return nil
	},
}
