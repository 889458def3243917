package leave_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-payroll/internal/leave"
	leaveerrors "go-payroll/internal/leave/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeLeaveRepository struct {
	createFn               func(ctx context.Context, l *leave.Leave) error
	findByIDAndCompanyFn   func(ctx context.Context, companyID, id string) (*leave.Leave, error)
	updateFn               func(ctx context.Context, l *leave.Leave) error
	employeeBelongsFn      func(ctx context.Context, companyID, employeeID string) (bool, error)
	hasOverlappingPeriodFn func(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error)
	findBalanceForUpdateFn func(ctx context.Context, companyID, employeeID string, year int) (*leave.LeaveBalance, error)
	saveBalanceFn          func(ctx context.Context, b *leave.LeaveBalance) error

	updatedLeave *leave.Leave
	savedBalance *leave.LeaveBalance
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository { return f }

func (f *fakeLeaveRepository) Create(ctx context.Context, l *leave.Leave) error {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	return nil
}

func (f *fakeLeaveRepository) FindAllByCompany(ctx context.Context, companyID string) ([]leave.Leave, error) {
	return nil, nil
}

func (f *fakeLeaveRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*leave.Leave, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepository) Update(ctx context.Context, l *leave.Leave) error {
	f.updatedLeave = l
	if f.updateFn != nil {
		return f.updateFn(ctx, l)
	}
	return nil
}

func (f *fakeLeaveRepository) Delete(ctx context.Context, companyID, id string) error { return nil }

func (f *fakeLeaveRepository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	if f.employeeBelongsFn != nil {
		return f.employeeBelongsFn(ctx, companyID, employeeID)
	}
	return true, nil
}

func (f *fakeLeaveRepository) HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	if f.hasOverlappingPeriodFn != nil {
		return f.hasOverlappingPeriodFn(ctx, companyID, employeeID, startDate, endDate, excludeID)
	}
	return false, nil
}

func (f *fakeLeaveRepository) FindBalanceForUpdate(ctx context.Context, companyID, employeeID string, year int) (*leave.LeaveBalance, error) {
	if f.findBalanceForUpdateFn != nil {
		return f.findBalanceForUpdateFn(ctx, companyID, employeeID, year)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepository) FindBalance(ctx context.Context, companyID, employeeID string, year int) (*leave.LeaveBalance, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepository) SaveBalance(ctx context.Context, b *leave.LeaveBalance) error {
	f.savedBalance = b
	if f.saveBalanceFn != nil {
		return f.saveBalanceFn(ctx, b)
	}
	return nil
}

type fakePresenceRecorder struct {
	recordedDays []time.Time
	calls        int
}

func (f *fakePresenceRecorder) RecordLeaveDays(ctx context.Context, companyID, employeeID uuid.UUID, days []time.Time) error {
	f.calls++
	f.recordedDays = days
	return nil
}

type leaveServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  leave.Service
	repo     *fakeLeaveRepository
	presence *fakePresenceRecorder
}

func setupLeaveServiceTest(t *testing.T) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	deps := &leaveServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		repo:     &fakeLeaveRepository{},
		presence: &fakePresenceRecorder{},
	}
	deps.service = leave.NewService(db, deps.repo, deps.presence)
	return deps
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func submittedLeave(leaveType string, workingDays int) *leave.Leave {
	// Mon 2026-06-01 .. Fri 2026-06-05
	return &leave.Leave{
		ID:          uuid.New(),
		CompanyID:   uuid.New(),
		EmployeeID:  uuid.New(),
		LeaveType:   leaveType,
		StartDate:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC),
		TotalDays:   5,
		WorkingDays: workingDays,
		Status:      leave.StatusSubmitted,
		CreatedBy:   uuid.New(),
	}
}

func TestLeaveService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	t.Run("success counts working days", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Create(ctx, companyID, actorID, leave.CreateLeaveRequest{
			EmployeeID: uuid.New().String(),
			LeaveType:  leave.TypeAnnual,
			// Fri 2026-06-05 .. Mon 2026-06-08 spans a weekend
			StartDate: "2026-06-05",
			EndDate:   "2026-06-08",
			Reason:    "family",
		})

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusPending, resp.Status)
		assert.Equal(t, 2, resp.WorkingDays)
		assert.Equal(t, 4, resp.TotalDays)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("weekend only period rejected", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Create(ctx, companyID, actorID, leave.CreateLeaveRequest{
			EmployeeID: uuid.New().String(),
			LeaveType:  leave.TypeAnnual,
			StartDate:  "2026-06-06",
			EndDate:    "2026-06-07",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrNoWorkingDays)
	})

	t.Run("overlapping period rejected", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)
		deps.repo.hasOverlappingPeriodFn = func(ctx context.Context, cid, eid string, start, end time.Time, excludeID *string) (bool, error) {
			return true, nil
		}

		_, err := deps.service.Create(ctx, companyID, actorID, leave.CreateLeaveRequest{
			EmployeeID: uuid.New().String(),
			LeaveType:  leave.TypeSick,
			StartDate:  "2026-06-01",
			EndDate:    "2026-06-03",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
	})

	t.Run("employee outside company rejected", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)
		deps.repo.employeeBelongsFn = func(ctx context.Context, cid, eid string) (bool, error) {
			return false, nil
		}

		_, err := deps.service.Create(ctx, companyID, actorID, leave.CreateLeaveRequest{
			EmployeeID: uuid.New().String(),
			LeaveType:  leave.TypeAnnual,
			StartDate:  "2026-06-01",
			EndDate:    "2026-06-03",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrEmployeeNotInCompany)
	})
}

func TestLeaveService_Approve(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("annual consumes balance and records presence", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		l := submittedLeave(leave.TypeAnnual, 5)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.Leave, error) {
			return l, nil
		}
		deps.repo.findBalanceForUpdateFn = func(ctx context.Context, cid, eid string, year int) (*leave.LeaveBalance, error) {
			assert.Equal(t, 2026, year)
			return &leave.LeaveBalance{
				ID:         uuid.New(),
				CompanyID:  l.CompanyID,
				EmployeeID: l.EmployeeID,
				Year:       2026,
				TotalDays:  12,
				UsedDays:   3,
			}, nil
		}

		resp, err := deps.service.Approve(ctx, l.CompanyID.String(), actorID, l.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		assert.NotNil(t, deps.repo.savedBalance)
		assert.Equal(t, 8, deps.repo.savedBalance.UsedDays)
		assert.Equal(t, 1, deps.presence.calls)
		assert.Len(t, deps.presence.recordedDays, 5)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("insufficient balance rejected", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		l := submittedLeave(leave.TypeAnnual, 5)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.Leave, error) {
			return l, nil
		}
		deps.repo.findBalanceForUpdateFn = func(ctx context.Context, cid, eid string, year int) (*leave.LeaveBalance, error) {
			return &leave.LeaveBalance{TotalDays: 12, UsedDays: 10}, nil
		}

		_, err := deps.service.Approve(ctx, l.CompanyID.String(), actorID, l.ID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
		assert.Equal(t, 0, deps.presence.calls)
	})

	t.Run("missing balance rejected", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		l := submittedLeave(leave.TypeAnnual, 5)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.Leave, error) {
			return l, nil
		}

		_, err := deps.service.Approve(ctx, l.CompanyID.String(), actorID, l.ID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrBalanceNotFound)
	})

	t.Run("sick leave skips balance but records presence", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		l := submittedLeave(leave.TypeSick, 5)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.Leave, error) {
			return l, nil
		}

		_, err := deps.service.Approve(ctx, l.CompanyID.String(), actorID, l.ID.String())

		assert.NoError(t, err)
		assert.Nil(t, deps.repo.savedBalance)
		assert.Equal(t, 1, deps.presence.calls)
	})

	t.Run("unpaid leave records no presence", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		l := submittedLeave(leave.TypeUnpaid, 5)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.Leave, error) {
			return l, nil
		}

		_, err := deps.service.Approve(ctx, l.CompanyID.String(), actorID, l.ID.String())

		assert.NoError(t, err)
		assert.Nil(t, deps.repo.savedBalance)
		assert.Equal(t, 0, deps.presence.calls)
	})

	t.Run("pending cannot be approved directly", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		l := submittedLeave(leave.TypeAnnual, 5)
		l.Status = leave.StatusPending
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.Leave, error) {
			return l, nil
		}

		_, err := deps.service.Approve(ctx, l.CompanyID.String(), actorID, l.ID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
	})
}

func TestLeaveService_Reject(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("requires a reason", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		l := submittedLeave(leave.TypeAnnual, 5)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.Leave, error) {
			return l, nil
		}

		_, err := deps.service.Reject(ctx, l.CompanyID.String(), actorID, l.ID.String(), "")

		assert.ErrorIs(t, err, leaveerrors.ErrRejectionReasonRequired)
	})

	t.Run("stores the reason", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		l := submittedLeave(leave.TypeAnnual, 5)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leave.Leave, error) {
			return l, nil
		}

		resp, err := deps.service.Reject(ctx, l.CompanyID.String(), actorID, l.ID.String(), "coverage gap")

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
		assert.NotNil(t, deps.repo.updatedLeave.RejectionReason)
		assert.Equal(t, "coverage gap", *deps.repo.updatedLeave.RejectionReason)
		assert.Equal(t, 0, deps.presence.calls)
	})
}

func TestLeaveService_SetBalance(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	deps := setupLeaveServiceTest(t)
	defer deps.db.Close()
	expectTx(t, deps.sqlMock, true)

	resp, err := deps.service.SetBalance(ctx, companyID, leave.SetBalanceRequest{
		EmployeeID: uuid.New().String(),
		Year:       2026,
		TotalDays:  12,
	})

	assert.NoError(t, err)
	assert.Equal(t, 12, resp.TotalDays)
	assert.Equal(t, 12, resp.Remaining)
	assert.NotNil(t, deps.repo.savedBalance)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}
