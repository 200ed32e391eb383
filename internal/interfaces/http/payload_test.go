package http

import (
	"encoding/json"
	"testing"

	trading "main/internal/domain/entity/trading"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountNumberUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "number", input: `12345`, want: 12345},
		{name: "quoted", input: `"12345"`, want: 12345},
		{name: "quoted with spaces", input: `" 12345 "`, want: 12345},
		{name: "not a number", input: `"abc"`, wantErr: true},
		{name: "float", input: `12.5`, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var n AccountNumber
			err := json.Unmarshal([]byte(tt.input), &n)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, int64(n))
		})
	}
}

func TestExecutePayloadIntent(t *testing.T) {
	t.Parallel()

	zero, tp := 0.0, 1.12
	payload := executePayload{
		Symbol:     "  eurusd  ",
		Direction:  " sell ",
		BaseVolume: 0.5,
		TakeProfit: &tp,
		StopLoss:   &zero,
	}

	intent := payload.intent()
	assert.Equal(t, "eurusd", intent.Symbol)
	assert.Equal(t, trading.DirectionSell, intent.Direction)
	require.NotNil(t, intent.TakeProfit)
	assert.Equal(t, tp, *intent.TakeProfit)
	assert.Nil(t, intent.StopLoss, "explicit zero means no stop loss")
}

func TestExecutePayloadTargets(t *testing.T) {
	t.Parallel()

	payload := executePayload{
		Accounts: []targetPayload{
			{AccountNumber: 111, Multiplier: 1.0},
			{AccountNumber: 222, Multiplier: 2.5},
		},
	}

	targets := payload.targets()
	require.Len(t, targets, 2)
	assert.Equal(t, int64(111), targets[0].AccountID)
	assert.Equal(t, 2.5, targets[1].Multiplier)
}
