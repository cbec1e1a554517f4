package cmd

import (
	"bytes"
	"fmt"

	"github.com/jsphweid/keytune/chord"
	"github.com/jsphweid/keytune/midi"
	"github.com/jsphweid/keytune/model"
	"github.com/jsphweid/keytune/sample"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/smf"
)

var (
	fromTick  uint64
	noteLimit int
)

func init() {
	inspectCmd.Flags().Uint64Var(&fromTick, "from", 0, "start the listing at this tick")
	inspectCmd.Flags().IntVar(&noteLimit, "limit", 0, "list at most this many notes per track (0 for all)")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Inspects a MIDI file",
	Long:  `Prints the tempo and the chords of a MIDI file, one line per onset.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}
		if fromTick > 0 || noteLimit > 0 {
			if s, err = excerpt(s); err != nil {
				return err
			}
		}
		return inspect(cmd, s)
	},
}

// excerpt cuts the window selected by the flags and reads it back.
func excerpt(s *smf.SMF) (*smf.SMF, error) {
	cut, err := sample.Create(s, fromTick, noteLimit)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := cut.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "could not write excerpt")
	}
	return midi.ReadMidi(&buf)
}

func inspect(cmd *cobra.Command, s *smf.SMF) error {
	chords, err := chord.GetChords(s)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	var ppq uint32
	if tf, ok := s.TimeFormat.(smf.MetricTicks); ok {
		ppq = uint32(tf.Resolution())
		fmt.Fprintf(w, "ppq: %v\n", ppq)
	}
	for _, track := range s.Tracks {
		for _, ev := range track {
			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) {
				fmt.Fprintf(w, "tempo: %.2f\n", bpm)
			}
		}
	}
	for _, c := range chords {
		class := "-"
		if d, ok := model.DurationFromTicks(c.Ticks, ppq); ok && ppq > 0 {
			class = d.String()
		}
		fmt.Fprintf(w, "%8.3fs  tick %-6v  ticks %-5v %-13s  vel %-3v  key: %v\n",
			c.Offset, c.AbsTicks, c.Ticks, class, c.Velocity, chord.CreateChordKey(c.Notes))
	}
	return nil
}
