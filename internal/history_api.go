package internal

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/leadflow/forecaster/internal/api"
	"github.com/leadflow/forecaster/internal/history"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// ForecastList is a window of the forecast history.
type ForecastList struct {
	Forecasts  []*history.Record `json:"forecasts"`
	Pagination Pagination        `json:"pagination"`
}

// Pagination describes the window returned by a listing.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

func (s *Server) historyStore() (history.Store, error) {
	if s.store == nil {
		return nil, api.AsErrNotFound("forecast history is disabled")
	}
	return s.store, nil
}

func (s *Server) getForecasts(c echo.Context) (interface{}, error) {
	args := struct {
		Kind   *string `query:"kind"`
		Offset *int    `query:"offset"`
		Limit  *int    `query:"limit"`
	}{}
	if err := api.BindArgs(&args, c); err != nil {
		return nil, err
	}
	store, err := s.historyStore()
	if err != nil {
		return nil, err
	}

	opts := history.ListOptions{Limit: defaultListLimit}
	if args.Kind != nil {
		if opts.Kind, err = history.ParseKind(*args.Kind); err != nil {
			return nil, api.AsValidationError("%s", err)
		}
	}
	if args.Offset != nil {
		opts.Offset = *args.Offset
	}
	if args.Limit != nil {
		opts.Limit = *args.Limit
	}
	if opts.Offset < 0 {
		return nil, api.AsValidationError("offset must not be negative")
	}
	if opts.Limit < 1 || opts.Limit > maxListLimit {
		return nil, api.AsValidationError("limit must be between 1 and %d", maxListLimit)
	}

	records, total, err := store.List(c.Request().Context(), opts)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = make([]*history.Record, 0)
	}
	return ForecastList{
		Forecasts:  records,
		Pagination: Pagination{Offset: opts.Offset, Limit: opts.Limit, Total: total},
	}, nil
}

func (s *Server) getForecast(c echo.Context) (interface{}, error) {
	args := struct {
		ID string `path:"id"`
	}{}
	if err := api.BindArgs(&args, c); err != nil {
		return nil, err
	}
	store, err := s.historyStore()
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(args.ID)
	if err != nil {
		return nil, api.AsValidationError("invalid forecast id: %s", args.ID)
	}
	rec, err := store.Get(c.Request().Context(), id)
	switch {
	case errors.Is(err, history.ErrNotFound):
		return nil, api.AsErrNotFound("forecast %s not found", id)
	case err != nil:
		return nil, err
	}
	return rec, nil
}
