package forecast

// IncrementalInput describes an absolute budget added to (or removed from) a channel.
type IncrementalInput struct {
	CurrentSpend      float64
	CurrentLeads      float64
	IncrementalBudget float64
	Elasticity        *float64
}

// IncrementalResult is the forecast for the new budget plus the cost of the leads the
// extra budget buys.
type IncrementalResult struct {
	Result

	IncrementalBudget float64 `json:"incremental_budget"`
	IncrementalLeads  float64 `json:"incremental_leads"`
	// IncrementalCPL is the average cost of each lead gained (or lost) by the budget change.
	IncrementalCPL float64 `json:"incremental_cpl"`
	// MarginalCPL is the cost of one more lead at the new spend level.
	MarginalCPL float64 `json:"marginal_cpl"`
}

// Incremental projects the impact of adding an absolute budget to the current spend.
func Incremental(in IncrementalInput) (IncrementalResult, error) {
	if err := validateChannel(in.CurrentSpend, in.CurrentLeads, in.Elasticity); err != nil {
		return IncrementalResult{}, err
	}
	if !finite(in.IncrementalBudget) {
		return IncrementalResult{}, inputErrorf("incremental_budget",
			"Incremental budget must be a finite number")
	}
	if in.IncrementalBudget < -in.CurrentSpend {
		return IncrementalResult{}, inputErrorf("incremental_budget",
			"Incremental budget cannot remove more than the current spend")
	}

	e := ClampElasticity(in.Elasticity)
	pct := in.IncrementalBudget / in.CurrentSpend * 100
	p := project(in.CurrentSpend, in.CurrentLeads, pct, e)
	if err := p.check("incremental_budget"); err != nil {
		return IncrementalResult{}, err
	}

	incrementalLeads := p.newLeads - p.currentLeads
	var incrementalCPL float64
	if incrementalLeads != 0 {
		incrementalCPL = in.IncrementalBudget / incrementalLeads
	}

	// d(spend)/d(leads) of spend = k * leads^(1/e) is spend / (e * leads).
	marginalCPL := p.newCPL / e
	if !finite(pct) || !finite(incrementalCPL) || !finite(marginalCPL) {
		return IncrementalResult{}, inputErrorf("incremental_budget",
			"Forecast exceeds the representable range")
	}

	return IncrementalResult{
		Result:            p.result(),
		IncrementalBudget: round(in.IncrementalBudget, 2),
		IncrementalLeads:  round(incrementalLeads, 2),
		IncrementalCPL:    round(incrementalCPL, 2),
		MarginalCPL:       round(marginalCPL, 2),
	}, nil
}
