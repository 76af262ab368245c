package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRiskFreeIncome(t *testing.T) {
	tests := []struct {
		name    string
		capital string
		rate    string
		want    float64
	}{
		{"seed month 2024-11", "28493.06", "4", 28493.06 * 4 / 100 / 12},
		{"zero capital", "0", "4", 0},
		{"zero rate", "100000", "0", 0},
		{"custom rate", "120000", "3.5", 350},
		{"keeps sub-cent precision", "100", "4", 100.0 * 4 / 100 / 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RiskFreeIncome(dec(tt.capital), dec(tt.rate))
			assert.InDelta(t, tt.want, got.InexactFloat64(), 1e-9, "got %s", got)
		})
	}
}

func TestRiskFreeIncome_NotRounded(t *testing.T) {
	got := RiskFreeIncome(dec("100"), dec("4"))

	assert.False(t, got.Equal(dec("0.33")), "got %s", got)
	assert.True(t, got.Round(2).Equal(dec("0.33")))
	assert.True(t, got.Mul(decimal.NewFromInt(3)).Round(10).Equal(dec("1")))
}

func TestPublicView_HidesCapital(t *testing.T) {
	rec := FinancialRecord{
		YearMonth:        "2024-11",
		TotalIncome:      dec("26108.82"),
		TotalExpense:     dec("6600"),
		TotalCapital:     dec("28493.06"),
		InvestmentIncome: dec("9278.17"),
		InterestRate:     dec("4"),
	}

	view := rec.PublicView()

	assert.InDelta(t, 94.9768666, view.TotalCapital.InexactFloat64(), 1e-6)
	assert.True(t, view.RiskFreeIncome.Equal(view.TotalCapital))
	assert.True(t, view.TotalIncome.Equal(rec.TotalIncome))
	assert.True(t, view.TotalExpense.Equal(rec.TotalExpense))
	assert.True(t, view.InvestmentIncome.Equal(rec.InvestmentIncome))
	assert.True(t, view.InterestRate.Equal(rec.InterestRate))
	assert.Equal(t, rec.YearMonth, view.YearMonth)

	// the source record is untouched
	assert.True(t, rec.TotalCapital.Equal(dec("28493.06")))
}

func TestPublicView_JSONNeverCarriesCapital(t *testing.T) {
	rec := FinancialRecord{
		YearMonth:    "2025-08",
		TotalCapital: dec("107388.01"),
		InterestRate: dec("4"),
	}

	body, err := json.Marshal(rec.PublicView())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))

	assert.InDelta(t, 107388.01*4/100/12, decoded["totalCapital"], 1e-9)
	assert.InDelta(t, 107388.01*4/100/12, decoded["riskFreeIncome"], 1e-9)
	assert.NotContains(t, string(body), "107388.01")
}

func TestRecordJSON_NumbersNotStrings(t *testing.T) {
	rec := FinancialRecord{
		YearMonth:        "2024-11",
		TotalIncome:      dec("26108.82"),
		TotalExpense:     dec("6600"),
		TotalCapital:     dec("28493.06"),
		InvestmentIncome: dec("9278.17"),
		InterestRate:     dec("4"),
	}

	body, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"totalIncome":26108.82`)
	assert.Contains(t, string(body), `"investmentIncome":9278.17`)
	assert.NotContains(t, string(body), "riskFreeIncome")

	body, err = json.Marshal(InvestmentIncomeSample{YearMonth: "2024-11", InvestmentIncome: dec("9278.17")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"yearMonth":"2024-11","investmentIncome":9278.17}`, string(body))
}

func TestDecimalJSONLeftUntouched(t *testing.T) {
	body, err := json.Marshal(dec("1.5"))
	require.NoError(t, err)
	assert.Equal(t, `"1.5"`, string(body))
}

func TestPublicViews_PreservesOrder(t *testing.T) {
	records := []FinancialRecord{
		{YearMonth: "2024-08", InterestRate: dec("4")},
		{YearMonth: "2024-09", InterestRate: dec("4")},
	}

	views := PublicViews(records)

	require.Len(t, views, 2)
	assert.Equal(t, "2024-08", views[0].YearMonth)
	assert.Equal(t, "2024-09", views[1].YearMonth)
	assert.NotNil(t, PublicViews(nil))
}

func TestValidateYearMonth(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2024-08", false},
		{"1999-12", false},
		{"", true},
		{"2024-13", true},
		{"2024-00", true},
		{"2024-8", true},
		{"24-08", true},
		{"2024/08", true},
		{"2024-08-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateYearMonth(tt.input)
			if tt.wantErr {
				assert.True(t, IsValidationError(err), "expected validation error, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
