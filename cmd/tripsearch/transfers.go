package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/tripsearch/constrained"
	"github.com/theoremus-urban-solutions/tripsearch/planner"
)

var (
	transfersVerbose bool

	transfersCmd = &cobra.Command{
		Use:   "transfers",
		Short: "Build the constrained transfer index and print what it holds",
		RunE:  runTransfers,
	}
)

func init() {
	transfersCmd.Flags().BoolVarP(&transfersVerbose, "verbose", "v", false, "list every indexed stop position")
}

func runTransfers(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	g := s.planner.Current()
	out := cmd.OutOrStdout()
	st := g.IndexStats
	fmt.Fprintf(out, "generation %d: %d transfers, %d dropped (%d ambiguous), %d forward and %d reverse entries\n",
		g.ID, st.Transfers, st.Dropped, st.Ambiguous, st.ForwardEntries, st.ReverseEntries)
	if transfersVerbose {
		printIndex(out, g)
	}
	return nil
}

func printIndex(out io.Writer, g *planner.Generation) {
	for _, p := range g.Data.Patterns() {
		for _, dir := range []struct {
			name   string
			search *constrained.Search
		}{
			{"forward", g.Index.Forward(p)},
			{"reverse", g.Index.Reverse(p)},
		} {
			if dir.search == nil {
				continue
			}
			for pos := range p.NumStops() {
				for _, t := range dir.search.Transfers(pos) {
					fmt.Fprintf(out, "%s %s pos %d (%s): %s\n", p.ID, dir.name, pos, p.Stop(pos).ID, t)
				}
			}
		}
	}
}
