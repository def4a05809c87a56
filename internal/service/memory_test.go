package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/alexindevs/orgbase/internal/domain"
)

// memoryStore is an in-memory stand-in for the Postgres repositories. It
// enforces the same uniqueness constraints the schema does.
type memoryStore struct {
	mu            sync.Mutex
	users         map[string]domain.User
	emails        map[string]string
	orgs          map[string]domain.Organisation
	orgMembers    map[string][]string
	userOrgs      map[string][]string
	failOrgCreate bool
	hideEmails    bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:      map[string]domain.User{},
		emails:     map[string]string{},
		orgs:       map[string]domain.Organisation{},
		orgMembers: map[string][]string{},
		userOrgs:   map[string][]string{},
	}
}

func (m *memoryStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.emails[email]
	if !ok || m.hideEmails {
		return domain.User{}, domain.ErrNotFound
	}
	return m.users[id], nil
}

func (m *memoryStore) GetByID(ctx context.Context, userID string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (m *memoryStore) Create(ctx context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.emails[user.Email]; ok {
		return domain.User{}, domain.ErrConflict
	}
	m.users[user.ID] = user
	m.emails[user.Email] = user.ID
	return user, nil
}

func (m *memoryStore) GetOrgByID(ctx context.Context, orgID string) (domain.Organisation, error) {
	return m.orgByID(orgID)
}

func (m *memoryStore) orgByID(orgID string) (domain.Organisation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	org, ok := m.orgs[orgID]
	if !ok {
		return domain.Organisation{}, domain.ErrNotFound
	}
	return org, nil
}

func (m *memoryStore) ListByUser(ctx context.Context, userID string) ([]domain.Organisation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orgs []domain.Organisation
	for _, orgID := range m.userOrgs[userID] {
		orgs = append(orgs, m.orgs[orgID])
	}
	return orgs, nil
}

func (m *memoryStore) Members(ctx context.Context, orgID string) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []domain.User
	for _, userID := range m.orgMembers[orgID] {
		users = append(users, m.users[userID])
	}
	return users, nil
}

func (m *memoryStore) CreateOrg(ctx context.Context, org domain.Organisation, creatorID string) (domain.Organisation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orgs[org.ID] = org
	m.link(org.ID, creatorID)
	return org, nil
}

func (m *memoryStore) AddMember(ctx context.Context, orgID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.orgMembers[orgID] {
		if existing == userID {
			return domain.ErrConflict
		}
	}
	m.link(orgID, userID)
	return nil
}

func (m *memoryStore) Update(ctx context.Context, org domain.Organisation) (domain.Organisation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orgs[org.ID]; !ok {
		return domain.Organisation{}, domain.ErrNotFound
	}
	m.orgs[org.ID] = org
	return org, nil
}

func (m *memoryStore) Delete(ctx context.Context, orgID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orgs[orgID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.orgs, orgID)
	delete(m.orgMembers, orgID)
	return nil
}

func (m *memoryStore) RemoveMember(ctx context.Context, orgID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := m.orgMembers[orgID]
	for i, existing := range members {
		if existing == userID {
			m.orgMembers[orgID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

var errOrgCreateFailed = errors.New("organisation insert failed")

func (m *memoryStore) CreateRegistration(ctx context.Context, user domain.User, org domain.Organisation) (domain.User, domain.Organisation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.emails[user.Email]; ok {
		return domain.User{}, domain.Organisation{}, domain.ErrConflict
	}
	if m.failOrgCreate {
		// Transaction semantics: nothing persists, including the user row.
		return domain.User{}, domain.Organisation{}, errOrgCreateFailed
	}
	m.users[user.ID] = user
	m.emails[user.Email] = user.ID
	m.orgs[org.ID] = org
	m.link(org.ID, user.ID)
	return user, org, nil
}

func (m *memoryStore) link(orgID, userID string) {
	m.orgMembers[orgID] = append(m.orgMembers[orgID], userID)
	m.userOrgs[userID] = append(m.userOrgs[userID], orgID)
}

// orgRepo adapts memoryStore to repository.OrganisationRepository, whose
// GetByID and Create names collide with the user methods.
type orgRepo struct {
	*memoryStore
}

func (r orgRepo) GetByID(ctx context.Context, orgID string) (domain.Organisation, error) {
	return r.memoryStore.GetOrgByID(ctx, orgID)
}

func (r orgRepo) Create(ctx context.Context, org domain.Organisation, creatorID string) (domain.Organisation, error) {
	return r.memoryStore.CreateOrg(ctx, org, creatorID)
}
