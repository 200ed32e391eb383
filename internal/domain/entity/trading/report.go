package trading

import "time"

// ExecutionReport aggregates the results of one fan-out batch under a single
// execution identifier. Results keep the exact order of the input targets,
// one entry per target. The report is immutable once built and lives only
// for the duration of the response.
type ExecutionReport struct {
	ExecutionID string        `json:"execution_id"`
	Symbol      string        `json:"symbol"`
	Direction   Direction     `json:"direction"`
	BaseVolume  float64       `json:"base_volume"`
	TakeProfit  *float64      `json:"tp"`
	StopLoss    *float64      `json:"sl"`
	Results     []OrderResult `json:"results"`
	ExecutedAt  time.Time     `json:"executed_at"`
}

// Filled returns how many entries were confirmed by the terminal.
func (r *ExecutionReport) Filled() int {
	n := 0
	for i := range r.Results {
		if r.Results[i].Status == OrderStatusFilled {
			n++
		}
	}
	return n
}
