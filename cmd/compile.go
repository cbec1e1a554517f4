package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jsphweid/keytune/model"
	"github.com/jsphweid/keytune/notation"
	"github.com/spf13/cobra"
)

var asJSON bool

func init() {
	compileCmd.Flags().BoolVar(&asJSON, "json", false, "print the events as JSON")
	rootCmd.AddCommand(compileCmd)
}

var compileCmd = &cobra.Command{
	Use:   "compile TEXT",
	Short: "Prints the events a string compiles to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGrammar()
		if err != nil {
			return err
		}
		res, err := compileResponse(notation.Compile(args[0], g), tempo)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		printSequence(cmd.OutOrStdout(), res)
		return nil
	},
}

func compileResponse(seq model.Sequence, tempoBPM float64) (model.CompileResponse, error) {
	if err := model.ValidateTempo(tempoBPM); err != nil {
		return model.CompileResponse{}, err
	}
	rests, notes, chords := seq.Counts()
	if seq == nil {
		seq = model.Sequence{}
	}
	return model.CompileResponse{
		Events:   seq,
		Rests:    rests,
		Notes:    notes,
		Chords:   chords,
		LengthMs: seq.Length(tempoBPM).Milliseconds(),
	}, nil
}

var (
	restStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	chordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	countStyle = lipgloss.NewStyle().Faint(true)
)

func kindStyle(k model.Kind) lipgloss.Style {
	switch k {
	case model.NoteKind:
		return noteStyle
	case model.ChordKind:
		return chordStyle
	}
	return restStyle
}

func printSequence(w io.Writer, res model.CompileResponse) {
	for i, e := range res.Events {
		names := make([]string, len(e.Pitches))
		for j, p := range e.Pitches {
			names[j] = p.String()
		}
		line := fmt.Sprintf("%3d  %-5s  %-14s %-13s", i+1, e.Kind, strings.Join(names, " "), e.Duration)
		if !e.IsRest() {
			line += fmt.Sprintf(" %.2f", e.Velocity)
		}
		fmt.Fprintln(w, kindStyle(e.Kind).Render(line))
	}
	fmt.Fprintln(w, countStyle.Render(fmt.Sprintf("%d notes, %d chords, %d rests, %dms",
		res.Notes, res.Chords, res.Rests, res.LengthMs)))
}
