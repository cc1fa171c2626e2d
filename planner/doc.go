/*
Package planner serves trip plans from graph generations.

A Generation bundles the transit model, its constrained transfers, the
transfer index and the routing graph built from them. The Planner holds the
current generation behind an atomic pointer: Load and ApplyUpdates build a
new generation and swap it in, while searches that already started keep the
generation they picked.

	p := planner.New(planner.Options{Search: cfg.Search, Location: loc})
	if _, err := p.Load(data, transfers); err != nil {
	    return err
	}
	it, err := p.Plan(ctx, planner.PlanRequest{From: "A", To: "D", Time: when})

PlanAll runs several requests concurrently against one generation.
*/
package planner
