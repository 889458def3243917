package events

import "time"

const PayrollRunCompletedTopic = "hr.payroll.run.completed.v1"

type PayrollRunCompletedEvent struct {
	EventType string    `json:"event_type"`
	RunID     string    `json:"run_id"`
	CompanyID string    `json:"company_id"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	Processed int       `json:"processed"`
	TotalNet  string    `json:"total_net"`

	OccurredAt time.Time `json:"occurred_at"`
}
