package snapshot

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)

type ListHistoryRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

// ClampLimit maps a missing or out-of-range limit onto the allowed window.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
