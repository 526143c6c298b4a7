package snapshot

import "time"

// InsightSnapshot is the persisted headline of one insight computation.
type InsightSnapshot struct {
	ID               string    `json:"id" db:"id"`
	CustomerID       string    `json:"customer_id" db:"customer_id"`
	CreditTier       string    `json:"credit_tier" db:"credit_tier"`
	SatisfactionTier string    `json:"satisfaction_tier" db:"satisfaction_tier"`
	ValueSegment     string    `json:"value_segment" db:"value_segment"`
	SpendingHealth   string    `json:"spending_health" db:"spending_health"`
	SpendingRatio    *float64  `json:"spending_ratio,omitempty" db:"spending_ratio"`
	Actions          []string  `json:"actions" db:"actions"`
	ComputedAt       time.Time `json:"computed_at" db:"computed_at"`
}

type AIRunStatus string

const (
	AIRunRequested AIRunStatus = "requested"
	AIRunCompleted AIRunStatus = "completed"
	AIRunFailed    AIRunStatus = "failed"
)

// AIRun records one trigger of the remote scoring job.
type AIRun struct {
	ID          string      `json:"id" db:"id"`
	CustomerID  string      `json:"customer_id" db:"customer_id"`
	RequestedBy string      `json:"requested_by,omitempty" db:"requested_by"`
	Status      AIRunStatus `json:"status" db:"status"`
	Error       *string     `json:"error,omitempty" db:"error"`
	RequestedAt time.Time   `json:"requested_at" db:"requested_at"`
	FinishedAt  *time.Time  `json:"finished_at,omitempty" db:"finished_at"`
}
