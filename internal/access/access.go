package access

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/alexindevs/orgbase/internal/repository"
)

// Cache optionally memoises a user's organisation-id set. A nil cache means
// every decision reads the store directly. Implementations must be safe for
// concurrent use.
type Cache interface {
	GetOrgSet(ctx context.Context, userID string) ([]string, bool, error)
	SetOrgSet(ctx context.Context, userID string, orgIDs []string, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}

// orgSetTTL keeps cached membership sets short-lived so revocations converge
// quickly even without an explicit invalidation.
const orgSetTTL = 30 * time.Second

// Engine answers authorization questions by reducing them to membership-set
// queries. All methods are read-only and safe for unlimited parallel calls.
type Engine struct {
	orgs   repository.OrganisationRepository
	cache  Cache
	tracer trace.Tracer
}

// NewEngine builds an Engine. cache may be nil.
func NewEngine(orgs repository.OrganisationRepository, cache Cache) *Engine {
	return &Engine{
		orgs:   orgs,
		cache:  cache,
		tracer: otel.Tracer("github.com/alexindevs/orgbase/internal/access"),
	}
}

// CanAccessOrganisation reports whether the actor is a member of the
// organisation. Any member is equally privileged; there are no roles.
func (e *Engine) CanAccessOrganisation(ctx context.Context, actorID, orgID string) (bool, error) {
	ctx, span := e.tracer.Start(ctx, "access.CanAccessOrganisation")
	defer span.End()

	set, err := e.orgSet(ctx, actorID)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	for _, id := range set {
		if id == orgID {
			return true, nil
		}
	}
	return false, nil
}

// CanViewUser reports whether actor may read target's profile: either the
// two are the same user, or they share at least one organisation. The
// returned org id is the first shared organisation in the actor's
// enumeration order, or "" when the decision rests on identity alone.
func (e *Engine) CanViewUser(ctx context.Context, actorID, targetID string) (bool, string, error) {
	ctx, span := e.tracer.Start(ctx, "access.CanViewUser")
	defer span.End()

	if actorID == targetID {
		return true, "", nil
	}

	actorSet, err := e.orgSet(ctx, actorID)
	if err != nil {
		span.RecordError(err)
		return false, "", err
	}
	targetSet, err := e.orgSet(ctx, targetID)
	if err != nil {
		span.RecordError(err)
		return false, "", err
	}

	targetIndex := make(map[string]struct{}, len(targetSet))
	for _, id := range targetSet {
		targetIndex[id] = struct{}{}
	}
	for _, id := range actorSet {
		if _, ok := targetIndex[id]; ok {
			return true, id, nil
		}
	}
	return false, "", nil
}

// Invalidate drops any cached membership set for the user. Called after
// membership mutations so decisions see the change immediately.
func (e *Engine) Invalidate(ctx context.Context, userID string) {
	if e.cache == nil {
		return
	}
	// Cache invalidation failure is not fatal: the TTL bounds staleness.
	_ = e.cache.Invalidate(ctx, userID)
}

func (e *Engine) orgSet(ctx context.Context, userID string) ([]string, error) {
	if e.cache != nil {
		if set, ok, err := e.cache.GetOrgSet(ctx, userID); err == nil && ok {
			return set, nil
		}
	}

	orgs, err := e.orgs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load membership set: %w", err)
	}
	set := make([]string, 0, len(orgs))
	for _, org := range orgs {
		set = append(set, org.ID)
	}

	if e.cache != nil {
		_ = e.cache.SetOrgSet(ctx, userID, set, orgSetTTL)
	}
	return set, nil
}
