package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/tripsearch/planner"
)

var (
	planFrom         string
	planTo           string
	planTime         string
	planArriveBy     bool
	planModes        []string
	planMaxTransfers int

	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Plan one trip between two stops",
		Example: `  tripsearch plan --from A --to D --time 2026-10-19T10:04:00+02:00
  tripsearch plan --gtfs gtfs.zip --from A --to D --arrive-by --modes WALK,RAIL`,
		RunE: runPlan,
	}
)

func init() {
	f := planCmd.Flags()
	f.StringVar(&planFrom, "from", "", "origin stop id")
	f.StringVar(&planTo, "to", "", "destination stop id")
	f.StringVar(&planTime, "time", "", "RFC3339 departure time, or arrival time with --arrive-by (default now)")
	f.BoolVar(&planArriveBy, "arrive-by", false, "search backwards from the arrival time")
	f.StringSliceVar(&planModes, "modes", nil, "allowed modes, e.g. WALK,TRANSIT or WALK,BUS")
	f.IntVar(&planMaxTransfers, "max-transfers", -1, "override search.maxTransfers")
	_ = planCmd.MarkFlagRequired("from")
	_ = planCmd.MarkFlagRequired("to")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	when := time.Now()
	if planTime != "" {
		t, err := time.Parse(time.RFC3339, planTime)
		if err != nil {
			return fmt.Errorf("--time: %w", err)
		}
		when = t
	}
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	pr := planner.PlanRequest{
		From:     planFrom,
		To:       planTo,
		Time:     when,
		ArriveBy: planArriveBy,
		Modes:    planModes,
	}
	if planMaxTransfers >= 0 {
		pr.MaxTransfers = &planMaxTransfers
	}
	it, err := s.planner.Plan(ctx, pr)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), it.Format(s.planner.Location()))
	return nil
}
