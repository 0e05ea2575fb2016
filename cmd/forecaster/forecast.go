package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/leadflow/forecaster/pkg/forecast"
	"github.com/leadflow/forecaster/pkg/logger"
)

type forecastFlags struct {
	spend      float64
	leads      float64
	change     float64
	budget     float64
	elasticity float64
	json       bool
}

var forecastArgs forecastFlags

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Project leads for a spend change without starting the server",
	Example: "  forecaster forecast --spend 12500 --leads 1928 --change 10\n" +
		"  forecaster forecast --spend 12500 --leads 1928 --budget 2500 --json",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := initializeConfig()
		if err != nil {
			return err
		}
		logger.SetLogrus(cfg.Log)

		elasticity := cfg.Forecast.DefaultElasticity
		if cmd.Flags().Changed("elasticity") {
			elasticity = forecastArgs.elasticity
		}
		return runForecast(cmd.OutOrStdout(), forecastArgs, cmd.Flags().Changed("budget"), elasticity)
	},
}

func init() {
	flags := forecastCmd.Flags()
	flags.Float64Var(&forecastArgs.spend, "spend", 0, "current spend of the channel")
	flags.Float64Var(&forecastArgs.leads, "leads", 0, "current leads of the channel")
	flags.Float64Var(&forecastArgs.change, "change", 0, "spend change in percent")
	flags.Float64Var(&forecastArgs.budget, "budget", 0, "incremental budget, instead of --change")
	flags.Float64Var(&forecastArgs.elasticity, "elasticity", forecast.DefaultElasticity,
		"elasticity of leads to spend, defaults to forecast.default_elasticity")
	flags.BoolVar(&forecastArgs.json, "json", false, "print the forecast as JSON")
	forecastCmd.MarkFlagsMutuallyExclusive("change", "budget")
}

func runForecast(w io.Writer, f forecastFlags, incremental bool, elasticity float64) error {
	var (
		result interface{}
		rows   [][]string
	)
	if incremental {
		r, err := forecast.Incremental(forecast.IncrementalInput{
			CurrentSpend:      f.spend,
			CurrentLeads:      f.leads,
			IncrementalBudget: f.budget,
			Elasticity:        &elasticity,
		})
		if err != nil {
			return err
		}
		result = r
		rows = append(resultRows(r.Result),
			[]string{"Incremental budget", format(r.IncrementalBudget)},
			[]string{"Incremental leads", format(r.IncrementalLeads)},
			[]string{"Incremental CPL", format(r.IncrementalCPL)},
			[]string{"Marginal CPL", format(r.MarginalCPL)},
		)
	} else {
		r, err := forecast.Leads(forecast.Input{
			CurrentSpend:       f.spend,
			CurrentLeads:       f.leads,
			SpendChangePercent: f.change,
			Elasticity:         &elasticity,
		})
		if err != nil {
			return err
		}
		result = r
		rows = resultRows(r)
	}

	if f.json {
		bs, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding forecast")
		}
		_, err = fmt.Fprintln(w, string(bs))
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
	return nil
}

func resultRows(r forecast.Result) [][]string {
	return [][]string{
		{"Current spend", format(r.CurrentSpend)},
		{"New spend", format(r.NewSpend)},
		{"Spend change (%)", format(r.SpendChangePercent)},
		{"Current leads", format(r.CurrentLeads)},
		{"New leads", format(r.NewLeads)},
		{"Lead change (%)", format(r.LeadChangePercent)},
		{"Efficiency (%)", format(r.EfficiencyFactor)},
		{"Current CPL", format(r.CurrentCPL)},
		{"New CPL", format(r.NewCPL)},
		{"CPL change (%)", format(r.CPLChangePercent)},
		{"Elasticity", format(r.Elasticity)},
	}
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
