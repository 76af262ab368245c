package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeInput(t *testing.T, body string) RecordInput {
	t.Helper()
	var in RecordInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

func TestRecordInput_ForCreate(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantErr     string
		wantRate    string
		wantInvest  string
		wantCapital string
	}{
		{
			name:        "defaults applied",
			body:        `{"yearMonth":"2024-08","totalIncome":10994.64,"totalExpense":3758.68,"totalCapital":0}`,
			wantRate:    "4",
			wantInvest:  "0",
			wantCapital: "0",
		},
		{
			name:        "explicit optionals",
			body:        `{"yearMonth":"2024-12","totalIncome":1,"totalExpense":2,"totalCapital":3,"investmentIncome":-11999.75,"interestRate":2.5}`,
			wantRate:    "2.5",
			wantInvest:  "-11999.75",
			wantCapital: "3",
		},
		{
			name:        "zero values are present",
			body:        `{"yearMonth":"2024-08","totalIncome":0,"totalExpense":0,"totalCapital":0}`,
			wantRate:    "4",
			wantInvest:  "0",
			wantCapital: "0",
		},
		{
			name:    "missing capital",
			body:    `{"yearMonth":"2024-08","totalIncome":1,"totalExpense":2}`,
			wantErr: "missing required fields: totalCapital",
		},
		{
			name:    "missing everything",
			body:    `{}`,
			wantErr: "missing required fields: yearMonth, totalIncome, totalExpense, totalCapital",
		},
		{
			name:    "null counts as missing",
			body:    `{"yearMonth":"2024-08","totalIncome":null,"totalExpense":2,"totalCapital":3}`,
			wantErr: "missing required fields: totalIncome",
		},
		{
			name:    "malformed key",
			body:    `{"yearMonth":"2024-8","totalIncome":1,"totalExpense":2,"totalCapital":3}`,
			wantErr: `invalid yearMonth "2024-8": must be YYYY-MM`,
		},
		{
			name:    "income beyond float range",
			body:    `{"yearMonth":"2024-08","totalIncome":1e400,"totalExpense":0,"totalCapital":0}`,
			wantErr: "invalid totalIncome: number out of range",
		},
		{
			name:    "negative rate beyond float range",
			body:    `{"yearMonth":"2024-08","totalIncome":1,"totalExpense":0,"totalCapital":0,"interestRate":-1e400}`,
			wantErr: "invalid interestRate: number out of range",
		},
		{
			name:        "large but finite",
			body:        `{"yearMonth":"2024-08","totalIncome":1,"totalExpense":0,"totalCapital":1e300}`,
			wantRate:    "4",
			wantInvest:  "0",
			wantCapital: "1e300",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := decodeInput(t, tt.body).ForCreate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, IsValidationError(err))
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.True(t, rec.InterestRate.Equal(dec(tt.wantRate)), "rate %s", rec.InterestRate)
			assert.True(t, rec.InvestmentIncome.Equal(dec(tt.wantInvest)), "investment %s", rec.InvestmentIncome)
			assert.True(t, rec.TotalCapital.Equal(dec(tt.wantCapital)), "capital %s", rec.TotalCapital)
		})
	}
}

func TestRecordInput_ForUpdate(t *testing.T) {
	t.Run("missing yearMonth reported alone", func(t *testing.T) {
		_, err := decodeInput(t, `{}`).ForUpdate()
		require.Error(t, err)
		assert.Equal(t, "missing yearMonth", err.Error())
	})

	t.Run("missing numeric fields rejected", func(t *testing.T) {
		_, err := decodeInput(t, `{"yearMonth":"2024-08","totalIncome":5}`).ForUpdate()
		require.Error(t, err)
		assert.Equal(t, "missing required fields: totalExpense, totalCapital", err.Error())
	})

	t.Run("out of range amount rejected", func(t *testing.T) {
		_, err := decodeInput(t, `{"yearMonth":"2024-08","totalIncome":1,"totalExpense":1,"totalCapital":1e400}`).ForUpdate()
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Equal(t, "invalid totalCapital: number out of range", err.Error())
	})

	t.Run("full payload", func(t *testing.T) {
		rec, err := decodeInput(t, `{"yearMonth":" 2024-08 ","totalIncome":"5.5","totalExpense":1,"totalCapital":2}`).ForUpdate()
		require.NoError(t, err)
		assert.Equal(t, "2024-08", rec.YearMonth)
		assert.True(t, rec.TotalIncome.Equal(dec("5.5")))
	})
}
