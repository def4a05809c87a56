package repository

import (
	"context"

	"github.com/alexindevs/orgbase/internal/domain"
)

// UserRepository persists user records and lookups by id/email.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
}

// OrganisationRepository persists organisations and the user<->organisation
// membership relation. AddMember fails with domain.ErrConflict on duplicates.
type OrganisationRepository interface {
	GetByID(ctx context.Context, orgID string) (domain.Organisation, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Organisation, error)
	Members(ctx context.Context, orgID string) ([]domain.User, error)
	Create(ctx context.Context, org domain.Organisation, creatorID string) (domain.Organisation, error)
	AddMember(ctx context.Context, orgID, userID string) error
	Update(ctx context.Context, org domain.Organisation) (domain.Organisation, error)
	Delete(ctx context.Context, orgID string) error
	RemoveMember(ctx context.Context, orgID, userID string) error
}

// RegistrationStore creates a user together with their default organisation
// and membership inside a single transaction. The email uniqueness
// constraint is the arbiter under concurrent registration.
type RegistrationStore interface {
	CreateRegistration(ctx context.Context, user domain.User, org domain.Organisation) (domain.User, domain.Organisation, error)
}
