package auth

import "time"

// OperatorProfile describes the caller as seen through their token.
type OperatorProfile struct {
	OperatorID string    `json:"operator_id"`
	Name       string    `json:"name,omitempty"`
	Roles      []string  `json:"roles"`
	TokenID    string    `json:"token_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}
