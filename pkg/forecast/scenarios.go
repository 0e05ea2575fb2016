package forecast

import "math"

// MaxScenarios bounds the number of spend changes projected by one Scenarios call.
const MaxScenarios = 201

// rangeTolerance lets a range include its upper bound despite float accumulation.
const rangeTolerance = 1e-9

// Range is an inclusive sweep of spend change percentages.
type Range struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
	Step float64 `json:"step"`
}

// ScenarioInput projects one channel across several spend changes. Exactly one of
// SpendChangePercents and Range must be set.
type ScenarioInput struct {
	CurrentSpend        float64
	CurrentLeads        float64
	Elasticity          *float64
	SpendChangePercents []float64
	Range               *Range
}

// ScenarioResult lists one forecast per requested spend change, in request order.
type ScenarioResult struct {
	Elasticity float64  `json:"elasticity"`
	Scenarios  []Result `json:"scenarios"`
}

// Scenarios projects a channel across a list or range of spend changes.
func Scenarios(in ScenarioInput) (ScenarioResult, error) {
	if err := validateChannel(in.CurrentSpend, in.CurrentLeads, in.Elasticity); err != nil {
		return ScenarioResult{}, err
	}

	changes, err := in.changes()
	if err != nil {
		return ScenarioResult{}, err
	}

	e := ClampElasticity(in.Elasticity)
	out := ScenarioResult{
		Elasticity: round(e, 2),
		Scenarios:  make([]Result, 0, len(changes)),
	}
	for _, pct := range changes {
		r, err := Leads(Input{
			CurrentSpend:       in.CurrentSpend,
			CurrentLeads:       in.CurrentLeads,
			SpendChangePercent: pct,
			Elasticity:         &e,
		})
		if err != nil {
			return ScenarioResult{}, err
		}
		out.Scenarios = append(out.Scenarios, r)
	}
	return out, nil
}

func (in ScenarioInput) changes() ([]float64, error) {
	switch {
	case len(in.SpendChangePercents) > 0 && in.Range != nil:
		return nil, inputErrorf("scenarios", "Provide either spend_change_percents or range, not both")
	case len(in.SpendChangePercents) > 0:
		if len(in.SpendChangePercents) > MaxScenarios {
			return nil, inputErrorf("spend_change_percents",
				"At most %d scenarios can be projected at once", MaxScenarios)
		}
		return in.SpendChangePercents, nil
	case in.Range != nil:
		return in.Range.expand()
	default:
		return nil, inputErrorf("scenarios", "Provide spend_change_percents or range")
	}
}

func (r Range) expand() ([]float64, error) {
	if !finite(r.From) || !finite(r.To) || !finite(r.Step) {
		return nil, inputErrorf("range", "Range bounds must be finite numbers")
	}
	if r.Step <= 0 {
		return nil, inputErrorf("range", "Range step must be greater than 0")
	}
	if r.From > r.To {
		return nil, inputErrorf("range", "Range from must not exceed range to")
	}

	// The span is bounded before converting so a huge range cannot overflow int.
	span := (r.To-r.From)/r.Step + rangeTolerance
	if span >= MaxScenarios {
		return nil, inputErrorf("range",
			"At most %d scenarios can be projected at once", MaxScenarios)
	}
	count := int(math.Floor(span)) + 1

	out := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		// Multiply rather than accumulate so each point is exact to one rounding.
		out = append(out, r.From+float64(i)*r.Step)
	}
	return out, nil
}
