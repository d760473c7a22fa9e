package domain

import "time"

// User is a local account resolved from a third-party OAuth identity.
// Exactly one of GitHubID / GoogleID is set by the flows that create users;
// the display fields are refreshed from the provider profile on every login.
type User struct {
	ID        string
	GitHubID  string
	GoogleID  string
	Username  string
	Name      string
	Email     string
	AvatarURL string
	CreatedAt time.Time
}
