package domain

import "time"

// UserPlan enumerates billing plans.
type UserPlan string

const (
	UserPlanFree UserPlan = "FREE"
	UserPlanPaid UserPlan = "PAID"
)

// User represents an authenticated account. Sessions are established by an
// external auth service; Subject is that service's stable user identifier.
type User struct {
	ID               string
	Subject          string
	Email            string
	Name             string
	Plan             UserPlan
	ApifyAPIToken    string
	GeminiAPIKey     string
	AtlasCloudAPIKey string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsFree reports whether the user is on the self-supplied-keys plan.
func (u User) IsFree() bool {
	return u.Plan != UserPlanPaid
}
