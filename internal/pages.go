package internal

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/leadflow/forecaster/internal/web"
	"github.com/leadflow/forecaster/pkg/forecast"
)

func (s *Server) pageData(page, title string) web.PageData {
	return web.PageData{
		Page:              page,
		Title:             title,
		Version:           s.Version,
		DefaultElasticity: s.config.Forecast.DefaultElasticity,
		MinElasticity:     forecast.MinElasticity,
		MaxElasticity:     forecast.MaxElasticity,
	}
}

func (s *Server) getForecastPage(c echo.Context) error {
	return c.Render(http.StatusOK, web.ForecastPage, s.pageData("forecast", "Spend change forecaster"))
}

func (s *Server) getIncrementalPage(c echo.Context) error {
	return c.Render(http.StatusOK, web.IncrementalPage,
		s.pageData("incremental", "Incremental budget impact"))
}
