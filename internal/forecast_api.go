package internal

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/leadflow/forecaster/internal/api"
	"github.com/leadflow/forecaster/internal/history"
	"github.com/leadflow/forecaster/internal/prom"
	"github.com/leadflow/forecaster/pkg/forecast"
)

const kindScenarios = "scenarios"

// Missing numbers default to zero, so a missing spend or lead count is reported the same way
// as a zero one.
type forecastRequest struct {
	CurrentSpend       api.MaybeFloat `json:"current_spend"`
	CurrentLeads       api.MaybeFloat `json:"current_leads"`
	SpendChangePercent api.MaybeFloat `json:"spend_change_percent"`
	Elasticity         api.MaybeFloat `json:"elasticity"`
}

type incrementalRequest struct {
	CurrentSpend      api.MaybeFloat `json:"current_spend"`
	CurrentLeads      api.MaybeFloat `json:"current_leads"`
	IncrementalBudget api.MaybeFloat `json:"incremental_budget"`
	Elasticity        api.MaybeFloat `json:"elasticity"`
}

type scenariosRequest struct {
	CurrentSpend        api.MaybeFloat  `json:"current_spend"`
	CurrentLeads        api.MaybeFloat  `json:"current_leads"`
	Elasticity          api.MaybeFloat  `json:"elasticity"`
	SpendChangePercents []float64       `json:"spend_change_percents"`
	Range               *forecast.Range `json:"range"`
}

// elasticity returns the requested elasticity, or the configured default for null and
// absent values.
func (s *Server) elasticity(requested api.MaybeFloat) *float64 {
	e := requested.Or(s.config.Forecast.DefaultElasticity)
	return &e
}

// rejected converts model input errors into 400s and counts them.
func rejected(kind string, err error) error {
	var inputErr *forecast.InputError
	if errors.As(err, &inputErr) || errors.Is(err, api.ErrInvalid) {
		prom.ForecastRejected(kind)
	}
	if inputErr != nil {
		return api.AsValidationError("%s", inputErr.Message)
	}
	return err
}

func (s *Server) postForecast(c echo.Context) (interface{}, error) {
	kind := string(history.KindForecast)
	var req forecastRequest
	if err := api.BindValidJSON(&req, c, forecastSchema); err != nil {
		return nil, rejected(kind, err)
	}

	result, err := forecast.Leads(forecast.Input{
		CurrentSpend:       req.CurrentSpend.Or(0),
		CurrentLeads:       req.CurrentLeads.Or(0),
		SpendChangePercent: req.SpendChangePercent.Or(0),
		Elasticity:         s.elasticity(req.Elasticity),
	})
	if err != nil {
		return nil, rejected(kind, err)
	}
	prom.ForecastComputed(kind)

	s.record(c, func() (*history.Record, error) {
		return history.NewForecastRecord(result, s.clock.Now())
	})
	return result, nil
}

func (s *Server) postIncremental(c echo.Context) (interface{}, error) {
	kind := string(history.KindIncremental)
	var req incrementalRequest
	if err := api.BindValidJSON(&req, c, incrementalSchema); err != nil {
		return nil, rejected(kind, err)
	}

	result, err := forecast.Incremental(forecast.IncrementalInput{
		CurrentSpend:      req.CurrentSpend.Or(0),
		CurrentLeads:      req.CurrentLeads.Or(0),
		IncrementalBudget: req.IncrementalBudget.Or(0),
		Elasticity:        s.elasticity(req.Elasticity),
	})
	if err != nil {
		return nil, rejected(kind, err)
	}
	prom.ForecastComputed(kind)

	s.record(c, func() (*history.Record, error) {
		return history.NewIncrementalRecord(result, s.clock.Now())
	})
	return result, nil
}

func (s *Server) postScenarios(c echo.Context) (interface{}, error) {
	var req scenariosRequest
	if err := api.BindValidJSON(&req, c, scenariosSchema); err != nil {
		return nil, rejected(kindScenarios, err)
	}

	result, err := forecast.Scenarios(forecast.ScenarioInput{
		CurrentSpend:        req.CurrentSpend.Or(0),
		CurrentLeads:        req.CurrentLeads.Or(0),
		Elasticity:          s.elasticity(req.Elasticity),
		SpendChangePercents: req.SpendChangePercents,
		Range:               req.Range,
	})
	if err != nil {
		return nil, rejected(kindScenarios, err)
	}
	prom.ForecastComputed(kindScenarios)
	return result, nil
}

// record stores a computed forecast and points the Location header at it. A failure to
// record is logged; the forecast itself is still returned.
func (s *Server) record(c echo.Context, build func() (*history.Record, error)) {
	if s.store == nil {
		return
	}
	rec, err := build()
	if err == nil {
		err = s.store.Add(c.Request().Context(), rec)
	}
	if err != nil {
		log.WithError(err).Error("failed to record forecast")
		return
	}
	c.Response().Header().Set(echo.HeaderLocation, "/api/forecasts/"+rec.ID.String())
}
