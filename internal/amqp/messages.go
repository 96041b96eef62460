package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"salmonsurvey/internal/core"
)

var ErrInvalidMessage = errors.New("invalid totals message")

// TotalsMessage carries the yearly totals produced by one refresh.
// The worker uses RunID to skip redeliveries.
type TotalsMessage struct {
	RunID        string             `json:"run_id"`
	GeneratedAt  time.Time          `json:"generated_at"`
	LatestSurvey core.Date          `json:"latest_survey"`
	Totals       []core.YearlyTotal `json:"totals"`
}

// NewTotalsMessage stamps the totals of a run with the current time.
func NewTotalsMessage(runID string, latest core.Date, totals []core.YearlyTotal) *TotalsMessage {
	return &TotalsMessage{
		RunID:        runID,
		GeneratedAt:  time.Now().UTC(),
		LatestSurvey: latest,
		Totals:       totals,
	}
}

// ToJSON converts the message to JSON bytes
func (m *TotalsMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TotalsMessageFromJSON decodes and validates a message body.
func TotalsMessageFromJSON(data []byte) (*TotalsMessage, error) {
	var msg TotalsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *TotalsMessage) Validate() error {
	if m.RunID == "" {
		return errors.Join(ErrInvalidMessage, errors.New("missing run id"))
	}
	if m.GeneratedAt.IsZero() {
		return errors.Join(ErrInvalidMessage, errors.New("missing generated_at"))
	}
	for _, t := range m.Totals {
		if t.Category == "" {
			return errors.Join(ErrInvalidMessage, errors.New("total without category"))
		}
		if t.Value < 0 {
			return errors.Join(ErrInvalidMessage, errors.New("negative total for "+t.Category))
		}
	}
	return nil
}
