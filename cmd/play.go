package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/jsphweid/keytune/constants"
	"github.com/jsphweid/keytune/midi"
	"github.com/jsphweid/keytune/notation"
	"github.com/jsphweid/keytune/playback"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

var (
	portName  string
	dryRun    bool
	listPorts bool
)

func init() {
	for _, c := range []*cobra.Command{playCmd, serveCmd} {
		c.Flags().StringVar(&portName, "port", "", "MIDI output port name (default $KEYTUNE_MIDI_PORT or the first port)")
		c.Flags().BoolVar(&dryRun, "dry-run", false, "log notes instead of sending them to a MIDI port")
	}
	playCmd.Flags().BoolVar(&listPorts, "list", false, "list MIDI output ports and exit")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play TEXT",
	Short: "Plays a string on a MIDI output",
	Args: func(cmd *cobra.Command, args []string) error {
		if listPorts {
			return nil
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if listPorts {
			defer gomidi.CloseDriver()
			for _, p := range midi.ListOutPorts() {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		}
		return play(cmd.Context(), args[0])
	},
}

// openEngine returns the engine selected by the flags and a func releasing it.
func openEngine(logger *log.Logger) (playback.Engine, func(), error) {
	if dryRun {
		return playback.NewLogEngine(logger), func() {}, nil
	}

	name := portName
	if name == "" {
		name = constants.GetMidiPort()
	}
	engine, err := midi.OpenOutEngine(name, logger)
	if err != nil {
		gomidi.CloseDriver()
		return nil, nil, err
	}
	return engine, func() {
		if err := engine.Close(); err != nil {
			logger.Warn("could not close midi port", "err", err)
		}
		gomidi.CloseDriver()
	}, nil
}

func play(ctx context.Context, text string) error {
	logger := log.FromContext(ctx)
	g, err := loadGrammar()
	if err != nil {
		return err
	}
	seq := notation.Compile(text, g)

	engine, release, err := openEngine(logger)
	if err != nil {
		return err
	}
	defer release()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	scheduler := playback.NewScheduler(engine, logger)
	sess, err := scheduler.Play(ctx, seq, tempo)
	if err != nil {
		return err
	}
	<-sess.Done()
	if ctx.Err() != nil {
		logger.Info("interrupted", "session", sess.ID)
	}
	return nil
}
