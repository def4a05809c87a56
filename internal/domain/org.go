package domain

import "time"

// Organisation is a shared workspace owned collectively by its members.
type Organisation struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Membership joins a user to an organisation. The (organisation, user) pair
// is unique; every member carries the same rights.
type Membership struct {
	ID             int64
	OrganisationID string
	UserID         string
	CreatedAt      time.Time
}

// DefaultOrganisationName is the name given to the organisation created
// automatically at registration.
func DefaultOrganisationName(firstName string) string {
	return firstName + "'s Organisation"
}
