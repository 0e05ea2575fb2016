// Package history keeps a log of computed forecasts.
package history

import (
	"encoding/json"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"

	"github.com/leadflow/forecaster/pkg/forecast"
)

// Kind names the endpoint that produced a record.
type Kind string

const (
	// KindForecast records a percentage spend change forecast.
	KindForecast Kind = "forecast"
	// KindIncremental records an incremental budget forecast.
	KindIncremental Kind = "incremental"
)

// ParseKind validates a kind filter. The empty string selects every kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case "", KindForecast, KindIncremental:
		return k, nil
	default:
		return "", errors.Errorf("unknown forecast kind %q", s)
	}
}

// nameWords is the number of words in a generated record name, e.g. "brave-otter".
const nameWords = 2

// Record is one stored forecast.
type Record struct {
	bun.BaseModel `bun:"table:forecasts"`

	ID   uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name string    `bun:"name,notnull" json:"name"`
	Kind Kind      `bun:"kind,notnull" json:"kind"`

	CurrentSpend       float64 `bun:"current_spend" json:"current_spend"`
	CurrentLeads       float64 `bun:"current_leads" json:"current_leads"`
	SpendChangePercent float64 `bun:"spend_change_percent" json:"spend_change_percent"`
	// IncrementalBudget is null for percentage forecasts.
	IncrementalBudget null.Float `bun:"incremental_budget" json:"incremental_budget"`
	Elasticity        float64    `bun:"elasticity" json:"elasticity"`
	NewSpend          float64    `bun:"new_spend" json:"new_spend"`
	NewLeads          float64    `bun:"new_leads" json:"new_leads"`
	NewCPL            float64    `bun:"new_cpl" json:"new_cpl"`
	// Result is the response body returned when the forecast was computed.
	Result    map[string]interface{} `bun:"result,type:jsonb" json:"result"`
	CreatedAt time.Time              `bun:"created_at,notnull" json:"created_at"`
}

// NewForecastRecord builds the record of a percentage spend change forecast.
func NewForecastRecord(r forecast.Result, now time.Time) (*Record, error) {
	result, err := toMap(r)
	if err != nil {
		return nil, err
	}
	return &Record{
		ID:                 uuid.New(),
		Name:               petname.Generate(nameWords, "-"),
		Kind:               KindForecast,
		CurrentSpend:       r.CurrentSpend,
		CurrentLeads:       r.CurrentLeads,
		SpendChangePercent: r.SpendChangePercent,
		Elasticity:         r.Elasticity,
		NewSpend:           r.NewSpend,
		NewLeads:           r.NewLeads,
		NewCPL:             r.NewCPL,
		Result:             result,
		CreatedAt:          now.UTC(),
	}, nil
}

// NewIncrementalRecord builds the record of an incremental budget forecast.
func NewIncrementalRecord(r forecast.IncrementalResult, now time.Time) (*Record, error) {
	rec, err := NewForecastRecord(r.Result, now)
	if err != nil {
		return nil, err
	}
	if rec.Result, err = toMap(r); err != nil {
		return nil, err
	}
	rec.Kind = KindIncremental
	rec.IncrementalBudget = null.FloatFrom(r.IncrementalBudget)
	return rec, nil
}

func toMap(v interface{}) (map[string]interface{}, error) {
	bs, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encoding forecast result")
	}
	var m map[string]interface{}
	if err := json.Unmarshal(bs, &m); err != nil {
		return nil, errors.Wrap(err, "decoding forecast result")
	}
	return m, nil
}
