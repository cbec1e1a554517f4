package cmd

import (
	"fmt"

	"github.com/jsphweid/keytune/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(grammarCmd)
}

var grammarCmd = &cobra.Command{
	Use:   "grammar",
	Short: "Prints the active grammar",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGrammar()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "grammar: %s\n", g.Name)
		fmt.Fprintf(w, "raise: %q  lower: %q  chord: %q %q\n", g.Raise, g.Lower, g.GroupOpen, g.GroupClose)
		fmt.Fprintln(w, "keys:")
		for _, k := range util.GetKeys(g.Keys) {
			fmt.Fprintf(w, "  %c  %v\n", k, g.Keys[k])
		}
		fmt.Fprintln(w, "rests:")
		for _, k := range util.GetKeys(g.Rests) {
			fmt.Fprintf(w, "  %c  %v\n", k, g.Rests[k])
		}
		fmt.Fprintln(w, "durations:")
		for i, d := range g.Durations.Steps {
			fmt.Fprintf(w, "  %d  %v\n", i+1, d)
		}
		return nil
	},
}
