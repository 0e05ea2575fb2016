// Package forecast projects lead volume for a paid marketing channel when its spend changes.
//
// Lead volume scales as spend^elasticity, so
//
//	new_leads / current_leads = (new_spend / current_spend) ^ elasticity
//
// An elasticity below 1 models diminishing returns: a 10% spend increase at the default
// elasticity of 0.82 yields roughly 8% more leads, and a 50% increase proportionally
// less. The same curve applies to spend cuts. Values between 0.75 and 0.88 are typical
// for paid search and paid social.
package forecast

import (
	"fmt"
	"math"
)

const (
	// DefaultElasticity is used when a request does not carry an elasticity.
	DefaultElasticity = 0.82
	// MinElasticity and MaxElasticity bound the accepted elasticity; values outside the
	// range are clamped rather than rejected.
	MinElasticity = 0.5
	MaxElasticity = 1.0

	maxEfficiency = 2.0
	// MinSpendChangePercent is the largest cut that still leaves a non-negative spend.
	MinSpendChangePercent = -100.0
)

// InputError reports an input the model cannot project from.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func inputErrorf(field string, format string, args ...interface{}) *InputError {
	return &InputError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Input describes the current state of a channel and the spend change to project.
type Input struct {
	CurrentSpend       float64
	CurrentLeads       float64
	SpendChangePercent float64
	// Elasticity is optional; nil selects DefaultElasticity.
	Elasticity *float64
}

// Result is a projected forecast. The JSON names are the public API contract.
type Result struct {
	CurrentSpend        float64 `json:"current_spend"`
	CurrentLeads        float64 `json:"current_leads"`
	CurrentCPL          float64 `json:"current_cpl"`
	SpendChangePercent  float64 `json:"spend_change_percent"`
	NewSpend            float64 `json:"new_spend"`
	SpendChangeAbsolute float64 `json:"spend_change_absolute"`
	// EfficiencyFactor is lead % change over spend % change, as a percentage. It can
	// exceed 100 when spend is cut.
	EfficiencyFactor    float64 `json:"efficiency_factor"`
	LeadChangePercent   float64 `json:"lead_change_percent"`
	NewLeads            float64 `json:"new_leads"`
	LeadsChangeAbsolute float64 `json:"leads_change_absolute"`
	NewCPL              float64 `json:"new_cpl"`
	CPLChangePercent    float64 `json:"cpl_change_percent"`
	Elasticity          float64 `json:"elasticity"`
}

// ClampElasticity resolves an optional elasticity into the accepted range.
func ClampElasticity(e *float64) float64 {
	if e == nil {
		return DefaultElasticity
	}
	return clamp(*e, MinElasticity, MaxElasticity)
}

// Leads projects lead volume and cost per lead for a percentage change in spend.
func Leads(in Input) (Result, error) {
	if err := validateChannel(in.CurrentSpend, in.CurrentLeads, in.Elasticity); err != nil {
		return Result{}, err
	}
	if !finite(in.SpendChangePercent) {
		return Result{}, inputErrorf("spend_change_percent", "Spend change must be a finite number")
	}
	if in.SpendChangePercent < MinSpendChangePercent {
		return Result{}, inputErrorf("spend_change_percent",
			"Spend change cannot be below %v%%", MinSpendChangePercent)
	}

	p := project(in.CurrentSpend, in.CurrentLeads, in.SpendChangePercent, ClampElasticity(in.Elasticity))
	if err := p.check("spend_change_percent"); err != nil {
		return Result{}, err
	}
	return p.result(), nil
}

func validateChannel(spend, leads float64, elasticity *float64) error {
	if !finite(spend) {
		return inputErrorf("current_spend", "Current spend must be a finite number")
	}
	if !finite(leads) {
		return inputErrorf("current_leads", "Current leads must be a finite number")
	}
	if elasticity != nil && !finite(*elasticity) {
		return inputErrorf("elasticity", "Elasticity must be a finite number")
	}
	if spend <= 0 {
		return inputErrorf("current_spend", "Current spend must be greater than 0")
	}
	if leads <= 0 {
		return inputErrorf("current_leads", "Current leads must be greater than 0")
	}
	return nil
}

// projection holds the unrounded model outputs; rounding happens once, on the way out.
type projection struct {
	currentSpend      float64
	currentLeads      float64
	spendChange       float64
	elasticity        float64
	newSpend          float64
	newLeads          float64
	leadChangePercent float64
	efficiency        float64
	currentCPL        float64
	newCPL            float64
	cplChangePercent  float64
}

func project(spend, leads, pct, elasticity float64) projection {
	spendMultiplier := 1 + pct/100
	leadMultiplier := math.Pow(spendMultiplier, elasticity)

	p := projection{
		currentSpend: spend,
		currentLeads: leads,
		spendChange:  pct,
		elasticity:   elasticity,
		newSpend:     spend * spendMultiplier,
		newLeads:     leads * leadMultiplier,
		efficiency:   1.0,
	}

	if pct != 0 {
		p.leadChangePercent = (leadMultiplier - 1) * 100
		p.efficiency = clamp(p.leadChangePercent/pct, 0, maxEfficiency)
	}

	if leads > 0 {
		p.currentCPL = spend / leads
	}
	if p.newLeads > 0 {
		p.newCPL = p.newSpend / p.newLeads
	}
	if p.currentCPL > 0 {
		p.cplChangePercent = (p.newCPL - p.currentCPL) / p.currentCPL * 100
	}
	return p
}

// check rejects projections whose values overflowed float64, attributing the error to field.
func (p projection) check(field string) error {
	for _, v := range []float64{
		p.newSpend, p.newLeads, p.leadChangePercent, p.efficiency,
		p.currentCPL, p.newCPL, p.cplChangePercent,
		p.newSpend - p.currentSpend, p.newLeads - p.currentLeads,
	} {
		if !finite(v) {
			return inputErrorf(field, "Forecast exceeds the representable range")
		}
	}
	return nil
}

func (p projection) result() Result {
	return Result{
		CurrentSpend:        round(p.currentSpend, 2),
		CurrentLeads:        round(p.currentLeads, 2),
		CurrentCPL:          round(p.currentCPL, 2),
		SpendChangePercent:  round(p.spendChange, 2),
		NewSpend:            round(p.newSpend, 2),
		SpendChangeAbsolute: round(p.newSpend-p.currentSpend, 2),
		EfficiencyFactor:    round(p.efficiency*100, 1),
		LeadChangePercent:   round(p.leadChangePercent, 2),
		NewLeads:            round(p.newLeads, 2),
		LeadsChangeAbsolute: round(p.newLeads-p.currentLeads, 2),
		NewCPL:              round(p.newCPL, 2),
		CPLChangePercent:    round(p.cplChangePercent, 2),
		Elasticity:          round(p.elasticity, 2),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
