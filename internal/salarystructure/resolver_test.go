package salarystructure_test

import (
	"testing"

	"go-payroll/internal/salarycomponent"
	"go-payroll/internal/salarystructure"
	salarystructureerrors "go-payroll/internal/salarystructure/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type componentFixture struct {
	id       uuid.UUID
	code     string
	kind     string
	active   bool
	amount   string
	calcKind string
}

func buildResolverInputs(fixtures []componentFixture) ([]salarystructure.StructureLine, map[uuid.UUID]salarycomponent.SalaryComponent) {
	lines := make([]salarystructure.StructureLine, 0, len(fixtures))
	components := make(map[uuid.UUID]salarycomponent.SalaryComponent, len(fixtures))

	for i, f := range fixtures {
		components[f.id] = salarycomponent.SalaryComponent{
			ID:       f.id,
			Code:     f.code,
			Name:     f.code,
			Kind:     f.kind,
			IsActive: f.active,
		}
		lines = append(lines, salarystructure.StructureLine{
			ID:          uuid.New(),
			ComponentID: f.id,
			Amount:      decimal.RequireFromString(f.amount),
			CalcKind:    f.calcKind,
			Position:    i,
		})
	}
	return lines, components
}

func TestResolveGross_FixedOnlyFullAttendance(t *testing.T) {
	lines, components := buildResolverInputs([]componentFixture{
		{id: uuid.New(), code: "BASIC", kind: salarycomponent.KindEarning, active: true, amount: "5000", calcKind: salarystructure.CalcKindFixed},
		{id: uuid.New(), code: "TRANSPORT", kind: salarycomponent.KindEarning, active: true, amount: "450.50", calcKind: salarystructure.CalcKindFixed},
	})

	result, err := salarystructure.ResolveGross(lines, components, 22, 22)

	assert.NoError(t, err)
	assert.Equal(t, "5450.50", result.GrossProRated.StringFixed(2))
	assert.Equal(t, "5450.50", result.GrossMonthly.StringFixed(2))
	assert.Equal(t, "0.00", result.TotalDeductions.StringFixed(2))
	assert.Len(t, result.Breakdown.Earnings, 2)
	assert.Empty(t, result.Breakdown.Deductions)
}

func TestResolveGross_ZeroPresentDays(t *testing.T) {
	lines, components := buildResolverInputs([]componentFixture{
		{id: uuid.New(), code: "BASIC", kind: salarycomponent.KindEarning, active: true, amount: "5000", calcKind: salarystructure.CalcKindFixed},
	})

	result, err := salarystructure.ResolveGross(lines, components, 22, 0)

	assert.NoError(t, err)
	assert.Equal(t, "0.00", result.GrossProRated.StringFixed(2))
	// The full-month figure is unaffected by attendance.
	assert.Equal(t, "5000.00", result.GrossMonthly.StringFixed(2))
}

func TestResolveGross_ProRataLinearity(t *testing.T) {
	lines, components := buildResolverInputs([]componentFixture{
		{id: uuid.New(), code: "BASIC", kind: salarycomponent.KindEarning, active: true, amount: "6600", calcKind: salarystructure.CalcKindFixed},
	})

	half, err := salarystructure.ResolveGross(lines, components, 22, 11)
	assert.NoError(t, err)
	full, err := salarystructure.ResolveGross(lines, components, 22, 22)
	assert.NoError(t, err)

	diff := full.GrossProRated.Sub(half.GrossProRated.Mul(decimal.NewFromInt(2))).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.01")),
		"half attendance should pay half the full gross within rounding, diff %s", diff.String())
}

func TestResolveGross_PercentageOfFixedBase(t *testing.T) {
	lines, components := buildResolverInputs([]componentFixture{
		{id: uuid.New(), code: "BASIC", kind: salarycomponent.KindEarning, active: true, amount: "5000", calcKind: salarystructure.CalcKindFixed},
		{id: uuid.New(), code: "HRA", kind: salarycomponent.KindEarning, active: true, amount: "40", calcKind: salarystructure.CalcKindPercentage},
	})

	result, err := salarystructure.ResolveGross(lines, components, 20, 20)

	assert.NoError(t, err)
	assert.Equal(t, "7000.00", result.GrossProRated.StringFixed(2))
}

func TestResolveGross_DeductionAgainstFixedBase(t *testing.T) {
	lines, components := buildResolverInputs([]componentFixture{
		{id: uuid.New(), code: "BASIC", kind: salarycomponent.KindEarning, active: true, amount: "5000", calcKind: salarystructure.CalcKindFixed},
		{id: uuid.New(), code: "PF", kind: salarycomponent.KindDeduction, active: true, amount: "10", calcKind: salarystructure.CalcKindPercentage},
	})

	result, err := salarystructure.ResolveGross(lines, components, 22, 22)

	assert.NoError(t, err)
	assert.Equal(t, "5000.00", result.GrossProRated.StringFixed(2))
	assert.Equal(t, "500.00", result.TotalDeductions.StringFixed(2))
	// Net pay lives with the caller: 5000 - 500 = 4500.00.
	net := result.GrossProRated.Sub(result.TotalDeductions)
	assert.Equal(t, "4500.00", net.StringFixed(2))
}

func TestResolveGross_InvalidArguments(t *testing.T) {
	lines, components := buildResolverInputs([]componentFixture{
		{id: uuid.New(), code: "BASIC", kind: salarycomponent.KindEarning, active: true, amount: "5000", calcKind: salarystructure.CalcKindFixed},
	})

	t.Run("working days zero", func(t *testing.T) {
		_, err := salarystructure.ResolveGross(lines, components, 0, 0)
		assert.ErrorIs(t, err, salarystructureerrors.ErrWorkingDaysNotPositive)
	})

	t.Run("working days negative", func(t *testing.T) {
		_, err := salarystructure.ResolveGross(lines, components, -5, 0)
		assert.ErrorIs(t, err, salarystructureerrors.ErrWorkingDaysNotPositive)
	})

	t.Run("present exceeds working", func(t *testing.T) {
		_, err := salarystructure.ResolveGross(lines, components, 20, 21)
		assert.ErrorIs(t, err, salarystructureerrors.ErrPresentExceedsWorking)
	})

	t.Run("present negative", func(t *testing.T) {
		_, err := salarystructure.ResolveGross(lines, components, 20, -1)
		assert.ErrorIs(t, err, salarystructureerrors.ErrPresentExceedsWorking)
	})

	t.Run("empty structure", func(t *testing.T) {
		_, err := salarystructure.ResolveGross(nil, components, 20, 20)
		assert.ErrorIs(t, err, salarystructureerrors.ErrEmptyStructure)
	})
}

func TestResolveGross_UnknownComponentNamesID(t *testing.T) {
	orphanID := uuid.New()
	lines := []salarystructure.StructureLine{
		{ID: uuid.New(), ComponentID: orphanID, Amount: decimal.NewFromInt(1000), CalcKind: salarystructure.CalcKindFixed},
	}

	_, err := salarystructure.ResolveGross(lines, map[uuid.UUID]salarycomponent.SalaryComponent{}, 20, 20)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), orphanID.String())
}

func TestResolveGross_InactiveComponentNamesCode(t *testing.T) {
	lines, components := buildResolverInputs([]componentFixture{
		{id: uuid.New(), code: "OLD_BONUS", kind: salarycomponent.KindEarning, active: false, amount: "100", calcKind: salarystructure.CalcKindFixed},
	})

	_, err := salarystructure.ResolveGross(lines, components, 20, 20)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "OLD_BONUS")
}

func TestResolveGross_MissingCalcKindDefaultsToFixed(t *testing.T) {
	lines, components := buildResolverInputs([]componentFixture{
		{id: uuid.New(), code: "BASIC", kind: salarycomponent.KindEarning, active: true, amount: "3000", calcKind: ""},
	})

	result, err := salarystructure.ResolveGross(lines, components, 20, 20)

	assert.NoError(t, err)
	assert.Equal(t, "3000.00", result.GrossProRated.StringFixed(2))
}
