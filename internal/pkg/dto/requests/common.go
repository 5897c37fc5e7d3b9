package requests

import "time"

// TenantContext is created at the request boundary and carried read-only
// through every operation. It decides which vendor credentials and target
// store coordinates apply.
type TenantContext struct {
	TenantID  string
	UserID    string
	RequestID string
	Timestamp time.Time
}
