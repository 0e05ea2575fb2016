package forecast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIncremental(t *testing.T) {
	r, err := Incremental(IncrementalInput{CurrentSpend: 12500, CurrentLeads: 1928, IncrementalBudget: 2500})
	require.NoError(t, err)

	require.Equal(t, 20.0, r.SpendChangePercent)
	require.Equal(t, 15000.0, r.NewSpend)
	require.Equal(t, 2238.9, r.NewLeads)
	require.Equal(t, 6.7, r.NewCPL)
	require.Equal(t, 2500.0, r.IncrementalBudget)
	require.Equal(t, 310.9, r.IncrementalLeads)
	require.Equal(t, 8.04, r.IncrementalCPL)
	require.Equal(t, 8.17, r.MarginalCPL)
	require.Equal(t, 0.82, r.Elasticity)
}

func TestIncrementalMatchesPercentForecast(t *testing.T) {
	inc, err := Incremental(IncrementalInput{CurrentSpend: 12500, CurrentLeads: 1928, IncrementalBudget: 1250})
	require.NoError(t, err)
	pct, err := Leads(Input{CurrentSpend: 12500, CurrentLeads: 1928, SpendChangePercent: 10})
	require.NoError(t, err)
	require.Equal(t, pct, inc.Result)
}

func TestIncrementalZeroBudget(t *testing.T) {
	r, err := Incremental(IncrementalInput{CurrentSpend: 1000, CurrentLeads: 100})
	require.NoError(t, err)
	require.Zero(t, r.IncrementalLeads)
	require.Zero(t, r.IncrementalCPL)
	require.Equal(t, r.CurrentCPL, r.NewCPL)
}

func TestIncrementalLinearElasticity(t *testing.T) {
	r, err := Incremental(IncrementalInput{
		CurrentSpend: 1000, CurrentLeads: 100, IncrementalBudget: 500, Elasticity: ptr(1),
	})
	require.NoError(t, err)
	require.Equal(t, 50.0, r.IncrementalLeads)
	require.Equal(t, 10.0, r.IncrementalCPL)
	require.Equal(t, 10.0, r.MarginalCPL)
}

func TestIncrementalRejectsOverdrawnBudget(t *testing.T) {
	_, err := Incremental(IncrementalInput{CurrentSpend: 1000, CurrentLeads: 100, IncrementalBudget: -1000.01})
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	require.Equal(t, "incremental_budget", inputErr.Field)

	_, err = Incremental(IncrementalInput{CurrentSpend: 0, CurrentLeads: 100, IncrementalBudget: 10})
	require.ErrorAs(t, err, &inputErr)
	require.Equal(t, "Current spend must be greater than 0", inputErr.Error())
}

func TestIncrementalRejectsOverflow(t *testing.T) {
	for _, in := range []IncrementalInput{
		{CurrentSpend: 1e308, CurrentLeads: 1, IncrementalBudget: 1e308},
		{CurrentSpend: 1e-300, CurrentLeads: 1, IncrementalBudget: 1e10},
	} {
		var err error
		require.NotPanics(t, func() { _, err = Incremental(in) })
		var inputErr *InputError
		require.ErrorAs(t, err, &inputErr, "input %+v", in)
		require.Equal(t, "incremental_budget", inputErr.Field)
		require.Equal(t, "Forecast exceeds the representable range", inputErr.Message)
	}
}
