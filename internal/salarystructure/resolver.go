package salarystructure

import (
	"fmt"

	"go-payroll/internal/salarycomponent"
	salarystructureerrors "go-payroll/internal/salarystructure/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ResolvedLine is one computed payslip line: the pro-rated amount plus a
// human-readable note explaining how it was derived.
type ResolvedLine struct {
	ComponentID uuid.UUID
	Code        string
	Name        string
	Kind        string
	Amount      decimal.Decimal
	Note        string
}

type Breakdown struct {
	Earnings   []ResolvedLine
	Deductions []ResolvedLine
}

type ResolveResult struct {
	// GrossMonthly is the full-month gross before pro-rata.
	GrossMonthly decimal.Decimal
	// GrossProRated is the sum of the pro-rated earning lines.
	GrossProRated decimal.Decimal
	// TotalDeductions is the sum of the pro-rated deduction lines. Net pay
	// is the caller's responsibility; the resolver stays a pure function of
	// (lines, days) -> breakdown.
	TotalDeductions decimal.Decimal
	Breakdown       Breakdown
}

var oneHundred = decimal.NewFromInt(100)

// ResolveGross computes the monetary breakdown of a structure for one
// employee-month. Two passes: percentage lines are defined relative to the
// sum of fixed earning lines, not relative to gross, so that base must be
// known before any percentage line can be resolved. Amounts are rounded to
// 2 decimals, half away from zero. No I/O happens here; the caller fetches
// lines and components up front.
func ResolveGross(
	lines []StructureLine,
	components map[uuid.UUID]salarycomponent.SalaryComponent,
	workingDays, presentDays int,
) (ResolveResult, error) {
	if workingDays <= 0 {
		return ResolveResult{}, salarystructureerrors.ErrWorkingDaysNotPositive
	}
	if presentDays < 0 || presentDays > workingDays {
		return ResolveResult{}, salarystructureerrors.ErrPresentExceedsWorking
	}
	if len(lines) == 0 {
		return ResolveResult{}, salarystructureerrors.ErrEmptyStructure
	}

	// Components are validated when the structure is saved; re-check here so
	// a stale structure can never produce a silently wrong payslip.
	for _, line := range lines {
		component, ok := components[line.ComponentID]
		if !ok {
			return ResolveResult{}, salarystructureerrors.InvalidComponentReference(line.ComponentID.String())
		}
		if !component.IsActive {
			return ResolveResult{}, salarystructureerrors.InactiveComponent(component.Code)
		}
	}

	// Pass 1: the fixed-earnings base, the denominator of every percentage line.
	fixedEarningsBase := decimal.Zero
	for _, line := range lines {
		if components[line.ComponentID].Kind == salarycomponent.KindEarning && calcKind(line) == CalcKindFixed {
			fixedEarningsBase = fixedEarningsBase.Add(line.Amount)
		}
	}

	working := decimal.NewFromInt(int64(workingDays))
	present := decimal.NewFromInt(int64(presentDays))

	result := ResolveResult{
		GrossMonthly:    decimal.Zero,
		GrossProRated:   decimal.Zero,
		TotalDeductions: decimal.Zero,
	}

	// Pass 2: resolve and pro-rate every line in structure order.
	for _, line := range lines {
		component := components[line.ComponentID]

		var monthly decimal.Decimal
		var note string
		switch calcKind(line) {
		case CalcKindPercentage:
			monthly = fixedEarningsBase.Mul(line.Amount).Div(oneHundred)
			note = fmt.Sprintf("%s%% of fixed base %s = %s × %d/%d",
				line.Amount.String(), fixedEarningsBase.StringFixed(2), monthly.StringFixed(2), presentDays, workingDays)
		default:
			monthly = line.Amount
			note = fmt.Sprintf("%s × %d/%d", monthly.StringFixed(2), presentDays, workingDays)
		}

		proRated := monthly.Div(working).Mul(present).Round(2)

		resolved := ResolvedLine{
			ComponentID: component.ID,
			Code:        component.Code,
			Name:        component.Name,
			Kind:        component.Kind,
			Amount:      proRated,
			Note:        note,
		}

		switch component.Kind {
		case salarycomponent.KindDeduction:
			result.TotalDeductions = result.TotalDeductions.Add(proRated)
			result.Breakdown.Deductions = append(result.Breakdown.Deductions, resolved)
		default:
			result.GrossMonthly = result.GrossMonthly.Add(monthly)
			result.GrossProRated = result.GrossProRated.Add(proRated)
			result.Breakdown.Earnings = append(result.Breakdown.Earnings, resolved)
		}
	}

	result.GrossMonthly = result.GrossMonthly.Round(2)
	return result, nil
}

// calcKind defaults a missing calculation kind to FIXED.
func calcKind(line StructureLine) string {
	if line.CalcKind == "" {
		return CalcKindFixed
	}
	return line.CalcKind
}
