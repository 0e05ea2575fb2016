package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gotest.tools/assert"
)

func TestPaginate(t *testing.T) {
	tables := []struct {
		Total       int
		Offset      int
		Limit       int
		ReturnCount int
		Err         bool
	}{
		{10, 0, 0, 10, false},
		{10, -3, 0, 3, false},
		{10, 3, 0, 7, false},
		{10, 3, 4, 4, false},
		{10, 8, 5, 2, false},
		{10, 10, 0, 0, false},
		{10, 13, 0, 7, true},
		{10, -11, 0, 0, true},
		{10, 0, -1, 0, true},
	}

	for _, tb := range tables {
		p, err := Paginate(tb.Total, tb.Offset, tb.Limit)
		if tb.Err {
			assert.Assert(t, err != nil, "case %v", tb)
			continue
		}
		assert.NilError(t, err, "case %v", tb)
		assert.Assert(t, p.StartIndex <= p.EndIndex, "case %v", tb)
		assert.Assert(t, p.EndIndex >= 0 && p.EndIndex <= p.Total, "case %v", tb)
		assert.Equal(t, p.EndIndex-p.StartIndex, tb.ReturnCount, "case %v", tb)
	}
}

func TestMaybeFloat(t *testing.T) {
	type body struct {
		Elasticity MaybeFloat `json:"elasticity"`
	}

	var absent body
	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	require.False(t, absent.Elasticity.IsPresent)
	require.Equal(t, 0.82, absent.Elasticity.Or(0.82))

	var null body
	require.NoError(t, json.Unmarshal([]byte(`{"elasticity": null}`), &null))
	require.True(t, null.Elasticity.IsPresent)
	require.Nil(t, null.Elasticity.Value)

	var number body
	require.NoError(t, json.Unmarshal([]byte(`{"elasticity": 0.7}`), &number))
	require.Equal(t, 0.7, *number.Elasticity.Value)

	var str body
	require.NoError(t, json.Unmarshal([]byte(`{"elasticity": " 0.9 "}`), &str))
	require.Equal(t, 0.9, *str.Elasticity.Value)

	var bad body
	err := json.Unmarshal([]byte(`{"elasticity": "high"}`), &bad)
	require.ErrorContains(t, err, "could not convert string to float: 'high'")

	err = json.Unmarshal([]byte(`{"elasticity": true}`), &bad)
	require.ErrorContains(t, err, "could not convert true to float")
}

func TestBindArgs(t *testing.T) {
	type args struct {
		ID    string  `path:"id"`
		Limit int     `query:"limit"`
		Kind  *string `query:"kind"`
		Tail  *bool   `query:"tail"`
	}

	e := echo.New()
	newContext := func(target string) echo.Context {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues("abc")
		return c
	}

	var a args
	require.NoError(t, BindArgs(&a, newContext("/?limit=5&tail=true")))
	require.Equal(t, "abc", a.ID)
	require.Equal(t, 5, a.Limit)
	require.Nil(t, a.Kind)
	require.NotNil(t, a.Tail)
	require.True(t, *a.Tail)

	err := BindArgs(&args{}, newContext("/"))
	require.ErrorIs(t, err, ErrInvalid)
	require.EqualError(t, err, "missing parameter: limit")

	err = BindArgs(&args{}, newContext("/?limit=many"))
	require.ErrorIs(t, err, ErrInvalid)
	require.EqualError(t, err, `invalid value for parameter limit: "many"`)
}

func TestBindJSON(t *testing.T) {
	type payload struct {
		Spend MaybeFloat `json:"current_spend"`
	}
	e := echo.New()
	bind := func(body string) (payload, error) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var p payload
		err := BindJSON(&p, e.NewContext(req, httptest.NewRecorder()))
		return p, err
	}

	p, err := bind(`{"current_spend": "12500"}`)
	require.NoError(t, err)
	require.Equal(t, 12500.0, p.Spend.Or(0))

	for _, body := range []string{"", "   ", "{", `{"current_spend": "lots"}`, `[1, 2]`} {
		_, err := bind(body)
		require.ErrorIs(t, err, ErrInvalid, "body %q", body)
		require.True(t, strings.HasPrefix(err.Error(), "Invalid input: "), err.Error())
	}
}

func TestBindValidJSON(t *testing.T) {
	schema := MustCompileSchema("payload.json", []byte(`{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"properties": {
			"current_spend": {"type": ["number", "string", "null"]},
			"window": {
				"type": "object",
				"required": ["from", "to"],
				"properties": {"from": {"type": "number"}, "to": {"type": "number"}}
			}
		}
	}`))
	type payload struct {
		Spend  MaybeFloat `json:"current_spend"`
		Window struct {
			From float64 `json:"from"`
			To   float64 `json:"to"`
		} `json:"window"`
	}
	e := echo.New()
	bind := func(body string) (payload, error) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var p payload
		err := BindValidJSON(&p, e.NewContext(req, httptest.NewRecorder()), schema)
		return p, err
	}

	p, err := bind(`{"current_spend": "12.5", "window": {"from": 1, "to": 2}, "extra": true}`)
	require.NoError(t, err)
	require.Equal(t, 12.5, p.Spend.Or(0))
	require.Equal(t, 2.0, p.Window.To)

	tests := []struct {
		body     string
		contains string
	}{
		{``, "request body must be a JSON object"},
		{`{"current_spend":`, "Invalid input: "},
		{`[1, 2]`, "request body: "},
		{`{"current_spend": true}`, "current_spend: "},
		{`{"window": {"from": 1}}`, "window: "},
		{`{"window": {"from": "one", "to": 2}}`, "window.from: "},
	}
	for _, tc := range tests {
		_, err := bind(tc.body)
		require.ErrorIs(t, err, ErrInvalid, "body %q", tc.body)
		require.True(t, strings.HasPrefix(err.Error(), "Invalid input: "), err.Error())
		require.Contains(t, err.Error(), tc.contains)
	}
}

func TestMustCompileSchemaPanicsOnBadDocument(t *testing.T) {
	require.Panics(t, func() { MustCompileSchema("broken.json", []byte(`{"type":`)) })
}

func TestJSONErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		expect string
	}{
		{"validation", AsValidationError("Current spend must be greater than 0"), 400,
			"Current spend must be greater than 0"},
		{"wrapped validation", errors.Wrap(AsValidationError("bad id"), "getting record"), 400,
			"getting record: bad id"},
		{"not found", AsErrNotFound("forecast %s not found", "x"), 404, "forecast x not found"},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"), 429,
			"rate limit exceeded"},
		{"unknown", errors.New("boom"), 500, "An error occurred: boom"},
	}

	e := echo.New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/forecast", nil), rec)
			JSONErrorHandler(tc.err, c)

			require.Equal(t, tc.code, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Equal(t, tc.expect, resp.Error)
		})
	}
}

func TestJSONErrorHandlerHead(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodHead, "/", nil), rec)
	JSONErrorHandler(AsErrNotFound("missing"), c)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Zero(t, rec.Body.Len())
}
