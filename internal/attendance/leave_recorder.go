package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LeaveRecorder materializes approved paid leave as ON_LEAVE attendance rows
// so CountPresentDays sees them as presence.
type LeaveRecorder struct {
	repo Repository
}

func NewLeaveRecorder(repo Repository) *LeaveRecorder {
	return &LeaveRecorder{repo: repo}
}

func (r *LeaveRecorder) RecordLeaveDays(ctx context.Context, companyID, employeeID uuid.UUID, days []time.Time) error {
	rows := make([]Attendance, len(days))
	for i, day := range days {
		rows[i] = Attendance{
			ID:             uuid.New(),
			CompanyID:      companyID,
			EmployeeID:     employeeID,
			AttendanceDate: day,
			Status:         StatusOnLeave,
			Source:         SourceLeave,
		}
	}
	return r.repo.CreateBatch(ctx, rows)
}
