package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// RecordInput is a create or update payload. Pointer fields distinguish an
// absent value from an explicit zero.
type RecordInput struct {
	YearMonth        string           `json:"yearMonth"`
	TotalIncome      *decimal.Decimal `json:"totalIncome"`
	TotalExpense     *decimal.Decimal `json:"totalExpense"`
	TotalCapital     *decimal.Decimal `json:"totalCapital"`
	InvestmentIncome *decimal.Decimal `json:"investmentIncome"`
	InterestRate     *decimal.Decimal `json:"interestRate"`
}

// ForCreate validates a create payload and applies defaults.
func (in RecordInput) ForCreate() (FinancialRecord, error) {
	if missing := in.missingFields(true); len(missing) > 0 {
		return FinancialRecord{}, NewMissingFieldsError(missing...)
	}
	return in.record()
}

// ForUpdate validates an update payload. yearMonth is checked first so its
// absence is reported on its own.
func (in RecordInput) ForUpdate() (FinancialRecord, error) {
	if strings.TrimSpace(in.YearMonth) == "" {
		return FinancialRecord{}, NewValidationError("yearMonth", "missing yearMonth")
	}
	if missing := in.missingFields(false); len(missing) > 0 {
		return FinancialRecord{}, NewMissingFieldsError(missing...)
	}
	return in.record()
}

func (in RecordInput) missingFields(withKey bool) []string {
	var missing []string
	if withKey && strings.TrimSpace(in.YearMonth) == "" {
		missing = append(missing, "yearMonth")
	}
	if in.TotalIncome == nil {
		missing = append(missing, "totalIncome")
	}
	if in.TotalExpense == nil {
		missing = append(missing, "totalExpense")
	}
	if in.TotalCapital == nil {
		missing = append(missing, "totalCapital")
	}
	return missing
}

func (in RecordInput) record() (FinancialRecord, error) {
	ym := strings.TrimSpace(in.YearMonth)
	if err := ValidateYearMonth(ym); err != nil {
		return FinancialRecord{}, err
	}

	rec := FinancialRecord{
		YearMonth:        ym,
		TotalIncome:      *in.TotalIncome,
		TotalExpense:     *in.TotalExpense,
		TotalCapital:     *in.TotalCapital,
		InvestmentIncome: decimal.Zero,
		InterestRate:     DefaultInterestRate,
	}
	if in.InvestmentIncome != nil {
		rec.InvestmentIncome = *in.InvestmentIncome
	}
	if in.InterestRate != nil {
		rec.InterestRate = *in.InterestRate
	}
	if err := checkFinite(rec); err != nil {
		return FinancialRecord{}, err
	}
	return rec, nil
}

// checkFinite rejects amounts that the REAL columns would store as infinity.
func checkFinite(rec FinancialRecord) error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"totalIncome", rec.TotalIncome},
		{"totalExpense", rec.TotalExpense},
		{"totalCapital", rec.TotalCapital},
		{"investmentIncome", rec.InvestmentIncome},
		{"interestRate", rec.InterestRate},
	}
	for _, f := range fields {
		if math.IsInf(f.value.InexactFloat64(), 0) {
			return NewValidationError(f.name, fmt.Sprintf("invalid %s: number out of range", f.name))
		}
	}
	return nil
}
