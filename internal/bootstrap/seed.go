package bootstrap

import (
	"finboard/internal/core"

	"github.com/shopspring/decimal"
)

type seedRow struct {
	yearMonth string
	income    string
	expense   string
	capital   string
}

var seedRows = []seedRow{
	{"2024-08", "10994.64", "3758.68", "0.00"},
	{"2024-09", "8636.45", "8178.76", "7235.96"},
	{"2024-10", "14850.23", "8821.50", "14464.33"},
	{"2024-11", "26108.82", "6600.00", "28493.06"},
	{"2024-12", "9141.20", "6488.11", "48001.88"},
	{"2025-01", "24608.17", "3278.48", "50655.01"},
	{"2025-02", "8342.17", "14964.45", "71984.70"},
	{"2025-03", "14374.44", "10565.32", "65362.42"},
	{"2025-04", "17059.36", "14836.63", "69171.54"},
	{"2025-05", "35879.91", "14181.04", "71394.27"},
	{"2025-06", "19575.01", "12053.54", "93093.14"},
	{"2025-07", "15757.19", "8983.79", "100614.61"},
	{"2025-08", "8507.45", "9101.34", "107388.01"},
}

// SeedRecords returns the initial dataset written by Init, oldest month first.
func SeedRecords() []core.FinancialRecord {
	out := make([]core.FinancialRecord, len(seedRows))
	for i, r := range seedRows {
		out[i] = core.FinancialRecord{
			YearMonth:        r.yearMonth,
			TotalIncome:      decimal.RequireFromString(r.income),
			TotalExpense:     decimal.RequireFromString(r.expense),
			TotalCapital:     decimal.RequireFromString(r.capital),
			InvestmentIncome: decimal.Zero,
			InterestRate:     core.DefaultInterestRate,
		}
	}
	return out
}

// InvestmentBackfill is one month of the historical investment income applied
// by Migrate.
type InvestmentBackfill struct {
	YearMonth string
	Amount    decimal.Decimal
}

var backfillRows = [][2]string{
	{"2024-08", "0"},
	{"2024-09", "0"},
	{"2024-10", "0"},
	{"2024-11", "9278.17"},
	{"2024-12", "-11999.75"},
	{"2025-01", "7542.26"},
	{"2025-02", "-690.37"},
	{"2025-03", "-15569.97"},
	{"2025-04", "-15760.14"},
	{"2025-05", "12250.89"},
	{"2025-06", "4159.86"},
	{"2025-07", "16693.96"},
	{"2025-08", "-6354.37"},
}

func BackfillValues() []InvestmentBackfill {
	out := make([]InvestmentBackfill, len(backfillRows))
	for i, r := range backfillRows {
		out[i] = InvestmentBackfill{YearMonth: r[0], Amount: decimal.RequireFromString(r[1])}
	}
	return out
}
