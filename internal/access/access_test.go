package access_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexindevs/orgbase/internal/access"
	"github.com/alexindevs/orgbase/internal/domain"
)

func TestCanAccessOrganisation(t *testing.T) {
	repo := &stubOrgRepo{memberships: map[string][]string{
		"alice": {"org-a", "org-b"},
		"bob":   {"org-c"},
	}}
	engine := access.NewEngine(repo, nil)

	ok, err := engine.CanAccessOrganisation(context.Background(), "alice", "org-a")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = engine.CanAccessOrganisation(context.Background(), "bob", "org-a")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCanAccessFlipsAfterMembershipAdded(t *testing.T) {
	repo := &stubOrgRepo{memberships: map[string][]string{
		"alice": {"org-a"},
		"bob":   nil,
	}}
	engine := access.NewEngine(repo, nil)

	ok, err := engine.CanAccessOrganisation(context.Background(), "bob", "org-a")
	require.NoError(t, err)
	require.False(t, ok)

	repo.memberships["bob"] = []string{"org-a"}

	ok, err = engine.CanAccessOrganisation(context.Background(), "bob", "org-a")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCanViewUserSelf(t *testing.T) {
	engine := access.NewEngine(&stubOrgRepo{}, nil)

	ok, shared, err := engine.CanViewUser(context.Background(), "alice", "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, shared)
}

func TestCanViewUserSharedOrganisation(t *testing.T) {
	repo := &stubOrgRepo{memberships: map[string][]string{
		"alice": {"org-a", "org-b"},
		"bob":   {"org-b", "org-c"},
		"carol": {"org-d"},
	}}
	engine := access.NewEngine(repo, nil)

	ok, shared, err := engine.CanViewUser(context.Background(), "alice", "bob")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "org-b", shared)

	ok, _, err = engine.CanViewUser(context.Background(), "alice", "carol")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCanViewUserIsSymmetric(t *testing.T) {
	repo := &stubOrgRepo{memberships: map[string][]string{
		"alice": {"org-a", "org-b"},
		"bob":   {"org-b"},
		"carol": {"org-c"},
	}}
	engine := access.NewEngine(repo, nil)

	for _, pair := range [][2]string{{"alice", "bob"}, {"alice", "carol"}, {"bob", "carol"}} {
		forward, _, err := engine.CanViewUser(context.Background(), pair[0], pair[1])
		require.NoError(t, err)
		backward, _, err := engine.CanViewUser(context.Background(), pair[1], pair[0])
		require.NoError(t, err)
		require.Equal(t, forward, backward, "pair %v", pair)
	}
}

func TestEngineUsesCache(t *testing.T) {
	repo := &stubOrgRepo{memberships: map[string][]string{"alice": {"org-a"}}}
	cache := &memCache{sets: map[string][]string{}}
	engine := access.NewEngine(repo, cache)

	ok, err := engine.CanAccessOrganisation(context.Background(), "alice", "org-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, repo.listCalls)

	// Second decision is served from the cache.
	ok, err = engine.CanAccessOrganisation(context.Background(), "alice", "org-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, repo.listCalls)

	engine.Invalidate(context.Background(), "alice")
	_, err = engine.CanAccessOrganisation(context.Background(), "alice", "org-a")
	require.NoError(t, err)
	require.Equal(t, 2, repo.listCalls)
}

type stubOrgRepo struct {
	memberships map[string][]string
	listCalls   int
}

func (s *stubOrgRepo) ListByUser(ctx context.Context, userID string) ([]domain.Organisation, error) {
	s.listCalls++
	var orgs []domain.Organisation
	for _, id := range s.memberships[userID] {
		orgs = append(orgs, domain.Organisation{ID: id})
	}
	return orgs, nil
}

func (s *stubOrgRepo) GetByID(ctx context.Context, orgID string) (domain.Organisation, error) {
	return domain.Organisation{}, domain.ErrNotFound
}

func (s *stubOrgRepo) Members(ctx context.Context, orgID string) ([]domain.User, error) {
	return nil, nil
}

func (s *stubOrgRepo) Create(ctx context.Context, org domain.Organisation, creatorID string) (domain.Organisation, error) {
	return org, nil
}

func (s *stubOrgRepo) AddMember(ctx context.Context, orgID, userID string) error { return nil }

func (s *stubOrgRepo) Update(ctx context.Context, org domain.Organisation) (domain.Organisation, error) {
	return org, nil
}

func (s *stubOrgRepo) Delete(ctx context.Context, orgID string) error { return nil }

func (s *stubOrgRepo) RemoveMember(ctx context.Context, orgID, userID string) error { return nil }

type memCache struct {
	sets map[string][]string
}

func (m *memCache) GetOrgSet(ctx context.Context, userID string) ([]string, bool, error) {
	set, ok := m.sets[userID]
	return set, ok, nil
}

func (m *memCache) SetOrgSet(ctx context.Context, userID string, orgIDs []string, ttl time.Duration) error {
	m.sets[userID] = orgIDs
	return nil
}

func (m *memCache) Invalidate(ctx context.Context, userID string) error {
	delete(m.sets, userID)
	return nil
}
