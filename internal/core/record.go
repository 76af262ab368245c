// Package core holds the financial record domain model.
//
// One FinancialRecord exists per calendar month, keyed by its YYYY-MM string.
// Monetary values are decimals; the derived risk-free income is what
// non-admin callers see instead of the real capital.
package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// yearMonthLayout is the time layout of the record key.
const yearMonthLayout = "2006-01"

// DefaultInterestRate is the annual percentage applied when none is given.
var DefaultInterestRate = decimal.NewFromFloat(4.0)

// FinancialRecord is the stored row for one month.
type FinancialRecord struct {
	YearMonth        string          `json:"yearMonth"`
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpense     decimal.Decimal `json:"totalExpense"`
	TotalCapital     decimal.Decimal `json:"totalCapital"`
	InvestmentIncome decimal.Decimal `json:"investmentIncome"`
	InterestRate     decimal.Decimal `json:"interestRate"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// PublicRecord is the non-admin projection of a record. TotalCapital carries
// the risk-free income, never the stored capital.
type PublicRecord struct {
	FinancialRecord
	RiskFreeIncome decimal.Decimal `json:"riskFreeIncome"`
}

// InvestmentIncomeSample is the short verification row reported after a migration.
type InvestmentIncomeSample struct {
	YearMonth        string          `json:"yearMonth"`
	InvestmentIncome decimal.Decimal `json:"investmentIncome"`
}

// ChangeAction names the mutation that produced a change event.
type ChangeAction string

const (
	ActionUpsert    ChangeAction = "upsert"
	ActionUpdate    ChangeAction = "update"
	ActionDelete    ChangeAction = "delete"
	ActionBootstrap ChangeAction = "bootstrap"
)

// RiskFreeIncome returns capital * rate/100 / 12. The result is not rounded;
// presentation layers choose their own precision.
func RiskFreeIncome(capital, annualRatePercent decimal.Decimal) decimal.Decimal {
	return capital.
		Mul(annualRatePercent).
		Div(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(12))
}

// RiskFreeIncome returns the derived monthly figure for this record.
func (r FinancialRecord) RiskFreeIncome() decimal.Decimal {
	return RiskFreeIncome(r.TotalCapital, r.InterestRate)
}

// PublicView hides the stored capital behind the risk-free income.
// Every other field passes through unchanged, investment income included.
func (r FinancialRecord) PublicView() PublicRecord {
	rfi := r.RiskFreeIncome()
	masked := r
	masked.TotalCapital = rfi
	return PublicRecord{
		FinancialRecord: masked,
		RiskFreeIncome:  rfi,
	}
}

// PublicViews projects a list of records.
func PublicViews(records []FinancialRecord) []PublicRecord {
	out := make([]PublicRecord, len(records))
	for i, r := range records {
		out[i] = r.PublicView()
	}
	return out
}

// ValidateYearMonth checks that s is a YYYY-MM key with a real month.
func ValidateYearMonth(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return NewValidationError("yearMonth", "missing yearMonth")
	}
	if len(s) != len(yearMonthLayout) {
		return NewValidationError("yearMonth", fmt.Sprintf("invalid yearMonth %q: must be YYYY-MM", s))
	}
	if _, err := time.Parse(yearMonthLayout, s); err != nil {
		return NewValidationError("yearMonth", fmt.Sprintf("invalid yearMonth %q: must be YYYY-MM", s))
	}
	return nil
}

// number renders d as a bare JSON number instead of decimal's quoted string.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

type recordJSON struct {
	YearMonth        string      `json:"yearMonth"`
	TotalIncome      json.Number `json:"totalIncome"`
	TotalExpense     json.Number `json:"totalExpense"`
	TotalCapital     json.Number `json:"totalCapital"`
	InvestmentIncome json.Number `json:"investmentIncome"`
	InterestRate     json.Number `json:"interestRate"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

func (r FinancialRecord) wire() recordJSON {
	return recordJSON{
		YearMonth:        r.YearMonth,
		TotalIncome:      number(r.TotalIncome),
		TotalExpense:     number(r.TotalExpense),
		TotalCapital:     number(r.TotalCapital),
		InvestmentIncome: number(r.InvestmentIncome),
		InterestRate:     number(r.InterestRate),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// MarshalJSON writes monetary fields as JSON numbers.
func (r FinancialRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

// MarshalJSON writes the projection with riskFreeIncome alongside the record fields.
func (p PublicRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		recordJSON
		RiskFreeIncome json.Number `json:"riskFreeIncome"`
	}{
		recordJSON:     p.FinancialRecord.wire(),
		RiskFreeIncome: number(p.RiskFreeIncome),
	})
}

func (s InvestmentIncomeSample) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		YearMonth        string      `json:"yearMonth"`
		InvestmentIncome json.Number `json:"investmentIncome"`
	}{s.YearMonth, number(s.InvestmentIncome)})
}
