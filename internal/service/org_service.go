package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alexindevs/orgbase/internal/access"
	"github.com/alexindevs/orgbase/internal/domain"
	"github.com/alexindevs/orgbase/internal/repository"
)

// OrgService orchestrates organisation reads and membership changes, gated
// by the access engine.
type OrgService struct {
	users  repository.UserRepository
	orgs   repository.OrganisationRepository
	engine *access.Engine
	logger *zap.Logger
	tracer trace.Tracer
}

// NewOrgService wires dependencies.
func NewOrgService(users repository.UserRepository, orgs repository.OrganisationRepository, engine *access.Engine, logger *zap.Logger) *OrgService {
	return &OrgService{
		users:  users,
		orgs:   orgs,
		engine: engine,
		logger: logger,
		tracer: otel.Tracer("github.com/alexindevs/orgbase/internal/service"),
	}
}

// GetUserProfile returns the target profile when the actor is the target or
// shares an organisation with them.
func (s *OrgService) GetUserProfile(ctx context.Context, actorID, targetID string) (UserView, error) {
	ctx, span := s.tracer.Start(ctx, "OrgService.GetUserProfile")
	defer span.End()

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return UserView{}, fmt.Errorf("get user profile: %w", err)
	}

	if target.ID != actorID {
		ok, _, err := s.engine.CanViewUser(ctx, actorID, target.ID)
		if err != nil {
			span.RecordError(err)
			return UserView{}, fmt.Errorf("get user profile: %w", err)
		}
		if !ok {
			return UserView{}, fmt.Errorf("get user profile: %w", domain.ErrForbidden)
		}
	}

	return NewUserView(target), nil
}

// ListUserOrganisations returns every organisation the actor belongs to.
func (s *OrgService) ListUserOrganisations(ctx context.Context, actorID string) ([]OrganisationView, error) {
	ctx, span := s.tracer.Start(ctx, "OrgService.ListUserOrganisations")
	defer span.End()

	orgs, err := s.orgs.ListByUser(ctx, actorID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list organisations: %w", err)
	}
	return NewOrganisationViews(orgs), nil
}

// GetOrganisation returns organisation data when the actor is a member.
// Absent organisations surface as NotFound before any access decision.
func (s *OrgService) GetOrganisation(ctx context.Context, actorID, orgID string) (OrganisationView, error) {
	ctx, span := s.tracer.Start(ctx, "OrgService.GetOrganisation")
	defer span.End()

	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return OrganisationView{}, fmt.Errorf("get organisation: %w", err)
	}

	if err := s.requireMembership(ctx, actorID, org.ID); err != nil {
		return OrganisationView{}, fmt.Errorf("get organisation: %w", err)
	}
	return NewOrganisationView(org), nil
}

// GetOrganisationUsers returns the organisation together with its member
// profiles, gated by membership.
func (s *OrgService) GetOrganisationUsers(ctx context.Context, actorID, orgID string) (OrganisationUsersView, error) {
	ctx, span := s.tracer.Start(ctx, "OrgService.GetOrganisationUsers")
	defer span.End()

	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return OrganisationUsersView{}, fmt.Errorf("get organisation users: %w", err)
	}

	if err := s.requireMembership(ctx, actorID, org.ID); err != nil {
		return OrganisationUsersView{}, fmt.Errorf("get organisation users: %w", err)
	}

	members, err := s.orgs.Members(ctx, org.ID)
	if err != nil {
		span.RecordError(err)
		return OrganisationUsersView{}, fmt.Errorf("get organisation users: %w", err)
	}

	return OrganisationUsersView{
		OrgID:       org.ID,
		Name:        org.Name,
		Description: org.Description,
		Users:       NewUserViews(members),
	}, nil
}

// CreateOrganisation creates an organisation with the actor as its sole
// initial member.
func (s *OrgService) CreateOrganisation(ctx context.Context, actorID, name, description string) (OrganisationView, error) {
	ctx, span := s.tracer.Start(ctx, "OrgService.CreateOrganisation")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return OrganisationView{}, domain.NewValidationError(domain.FieldError{
			Field:   "name",
			Message: "name is required",
		})
	}

	org := domain.Organisation{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
	}

	created, err := s.orgs.Create(ctx, org, actorID)
	if err != nil {
		span.RecordError(err)
		return OrganisationView{}, fmt.Errorf("create organisation: %w", err)
	}

	s.engine.Invalidate(ctx, actorID)
	s.log().Info("organisation created",
		zap.String("org_id", created.ID),
		zap.String("creator_id", actorID),
	)
	return NewOrganisationView(created), nil
}

// AddUserToOrganisation inserts a membership after gating on the actor's own
// membership. Duplicate memberships are rejected by the store constraint and
// surface as Conflict, never silently ignored.
func (s *OrgService) AddUserToOrganisation(ctx context.Context, actorID, orgID, newUserID string) error {
	ctx, span := s.tracer.Start(ctx, "OrgService.AddUserToOrganisation")
	defer span.End()

	if err := s.requireMembership(ctx, actorID, orgID); err != nil {
		return fmt.Errorf("add user to organisation: %w", err)
	}

	if _, err := s.users.GetByID(ctx, newUserID); err != nil {
		return fmt.Errorf("add user to organisation: %w", err)
	}

	if err := s.orgs.AddMember(ctx, orgID, newUserID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("add user to organisation: %w", err)
	}

	s.engine.Invalidate(ctx, newUserID)
	s.log().Info("member added",
		zap.String("org_id", orgID),
		zap.String("user_id", newUserID),
		zap.String("actor_id", actorID),
	)
	return nil
}

func (s *OrgService) requireMembership(ctx context.Context, actorID, orgID string) error {
	ok, err := s.engine.CanAccessOrganisation(ctx, actorID, orgID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}

func (s *OrgService) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}
