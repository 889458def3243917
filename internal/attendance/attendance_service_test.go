package attendance_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-payroll/internal/attendance"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeAttendanceRepository struct {
	findByEmployeeAndDateFn func(ctx context.Context, companyID, employeeID string, date time.Time) (*attendance.Attendance, error)

	createdRow   *attendance.Attendance
	updatedRow   *attendance.Attendance
	batchedRows  []attendance.Attendance
	companyReads int
	selfReads    int
}

func (f *fakeAttendanceRepository) WithTx(tx *sql.Tx) attendance.Repository { return f }

func (f *fakeAttendanceRepository) Create(ctx context.Context, a *attendance.Attendance) error {
	f.createdRow = a
	return nil
}

func (f *fakeAttendanceRepository) CreateBatch(ctx context.Context, rows []attendance.Attendance) error {
	f.batchedRows = rows
	return nil
}

func (f *fakeAttendanceRepository) FindByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*attendance.Attendance, error) {
	if f.findByEmployeeAndDateFn != nil {
		return f.findByEmployeeAndDateFn(ctx, companyID, employeeID, date)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAttendanceRepository) FindAllByCompany(ctx context.Context, companyID string) ([]attendance.Attendance, error) {
	f.companyReads++
	return nil, nil
}

func (f *fakeAttendanceRepository) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]attendance.Attendance, error) {
	f.selfReads++
	return nil, nil
}

func (f *fakeAttendanceRepository) Update(ctx context.Context, a *attendance.Attendance) error {
	f.updatedRow = a
	return nil
}

func (f *fakeAttendanceRepository) CountPresentDays(ctx context.Context, companyID, employeeID string, month, year int) (int64, error) {
	return 0, nil
}

func (f *fakeAttendanceRepository) HasAnyInMonth(ctx context.Context, companyID, employeeID string, month, year int) (bool, error) {
	return false, nil
}

type attendanceServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service attendance.Service
	repo    *fakeAttendanceRepository
}

func setupAttendanceServiceTest(t *testing.T) *attendanceServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	deps := &attendanceServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		repo:    &fakeAttendanceRepository{},
	}
	deps.service = attendance.NewService(db, deps.repo)
	return deps
}

func TestAttendanceService_ClockIn(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("half day recorded", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.ClockIn(ctx, companyID, employeeID, attendance.ClockInRequest{HalfDay: true})

		assert.NoError(t, err)
		assert.Equal(t, attendance.StatusHalfDay, resp.Status)
		assert.Equal(t, attendance.SourceManual, resp.Source)
		assert.NotNil(t, deps.repo.createdRow.ClockIn)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("second clock in rejected", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, cid, eid string, date time.Time) (*attendance.Attendance, error) {
			return &attendance.Attendance{ID: uuid.New()}, nil
		}

		_, err := deps.service.ClockIn(ctx, companyID, employeeID, attendance.ClockInRequest{})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already clocked in")
	})

	t.Run("bad employee id", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.ClockIn(ctx, companyID, "not-a-uuid", attendance.ClockInRequest{})

		assert.Error(t, err)
	})
}

func TestAttendanceService_ClockOut(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("without clock in rejected", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.ClockOut(ctx, companyID, employeeID, attendance.ClockOutRequest{})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "clock in not found")
	})

	t.Run("double clock out rejected", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		out := time.Now().UTC()
		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, cid, eid string, date time.Time) (*attendance.Attendance, error) {
			return &attendance.Attendance{ID: uuid.New(), ClockOut: &out}, nil
		}

		_, err := deps.service.ClockOut(ctx, companyID, employeeID, attendance.ClockOutRequest{})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already clocked out")
	})

	t.Run("sets clock out time", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		in := time.Now().UTC().Add(-8 * time.Hour)
		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, cid, eid string, date time.Time) (*attendance.Attendance, error) {
			return &attendance.Attendance{ID: uuid.New(), ClockIn: &in, Status: attendance.StatusPresent}, nil
		}

		resp, err := deps.service.ClockOut(ctx, companyID, employeeID, attendance.ClockOutRequest{})

		assert.NoError(t, err)
		assert.NotNil(t, resp.ClockOut)
		assert.NotNil(t, deps.repo.updatedRow.ClockOut)
	})
}

func TestAttendanceService_GetAll(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := setupAttendanceServiceTest(t)
	defer deps.db.Close()

	_, err := deps.service.GetAll(ctx, companyID, actorID, true)
	assert.NoError(t, err)
	assert.Equal(t, 1, deps.repo.companyReads)

	_, err = deps.service.GetAll(ctx, companyID, actorID, false)
	assert.NoError(t, err)
	assert.Equal(t, 1, deps.repo.selfReads)
}

func TestLeaveRecorder_RecordLeaveDays(t *testing.T) {
	repo := &fakeAttendanceRepository{}
	recorder := attendance.NewLeaveRecorder(repo)

	companyID := uuid.New()
	employeeID := uuid.New()
	days := []time.Time{
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
	}

	err := recorder.RecordLeaveDays(context.Background(), companyID, employeeID, days)

	assert.NoError(t, err)
	assert.Len(t, repo.batchedRows, 2)
	for _, row := range repo.batchedRows {
		assert.Equal(t, attendance.StatusOnLeave, row.Status)
		assert.Equal(t, attendance.SourceLeave, row.Source)
		assert.Equal(t, employeeID, row.EmployeeID)
	}
}
