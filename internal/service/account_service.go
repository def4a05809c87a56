package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alexindevs/orgbase/internal/domain"
	pw "github.com/alexindevs/orgbase/internal/password"
	"github.com/alexindevs/orgbase/internal/repository"
	"github.com/alexindevs/orgbase/internal/token"
)

// AccountService orchestrates registration and login.
type AccountService struct {
	users         repository.UserRepository
	registrations repository.RegistrationStore
	tokens        *token.Issuer
	logger        *zap.Logger
	tracer        trace.Tracer
}

// NewAccountService wires dependencies.
func NewAccountService(users repository.UserRepository, registrations repository.RegistrationStore, tokens *token.Issuer, logger *zap.Logger) *AccountService {
	return &AccountService{
		users:         users,
		registrations: registrations,
		tokens:        tokens,
		logger:        logger,
		tracer:        otel.Tracer("github.com/alexindevs/orgbase/internal/service"),
	}
}

// RegistrationInput carries validated registration fields.
type RegistrationInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
}

// Register creates the user, their default organisation, and the creator
// membership inside one transaction, then issues a session token. A
// uniqueness violation at insert time is the canonical duplicate-email
// outcome regardless of the pre-check.
func (s *AccountService) Register(ctx context.Context, in RegistrationInput) (Registration, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Register")
	defer span.End()

	email := normalizeEmail(in.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return Registration{}, fmt.Errorf("register: email taken: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		span.RecordError(err)
		return Registration{}, fmt.Errorf("register: check existing user: %w", err)
	}

	hash, err := pw.Hash(in.Password)
	if err != nil {
		span.RecordError(err)
		return Registration{}, fmt.Errorf("register: hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
	}
	org := domain.Organisation{
		ID:   uuid.NewString(),
		Name: domain.DefaultOrganisationName(user.FirstName),
	}

	createdUser, createdOrg, err := s.registrations.CreateRegistration(ctx, user, org)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrConflict) {
			return Registration{}, fmt.Errorf("register: email taken: %w", domain.ErrConflict)
		}
		return Registration{}, fmt.Errorf("register: %w", err)
	}

	accessToken, err := s.tokens.Issue(createdUser)
	if err != nil {
		span.RecordError(err)
		return Registration{}, fmt.Errorf("register: issue token: %w", err)
	}

	s.log().Info("user registered",
		zap.String("user_id", createdUser.ID),
		zap.String("org_id", createdOrg.ID),
	)

	return Registration{
		Session: Session{
			AccessToken: accessToken,
			User:        NewUserView(createdUser),
		},
		Organisation: NewOrganisationView(createdOrg),
	}, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password both surface as domain.ErrAuthentication so the caller cannot
// learn whether the email exists.
func (s *AccountService) Login(ctx context.Context, email, password string) (Session, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Login")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Session{}, fmt.Errorf("login: %w", domain.ErrAuthentication)
		}
		span.RecordError(err)
		return Session{}, fmt.Errorf("login: %w", err)
	}

	valid, err := pw.Verify(password, user.PasswordHash)
	if err != nil || !valid {
		return Session{}, fmt.Errorf("login: %w", domain.ErrAuthentication)
	}

	accessToken, err := s.tokens.Issue(user)
	if err != nil {
		span.RecordError(err)
		return Session{}, fmt.Errorf("login: issue token: %w", err)
	}

	s.log().Info("user logged in", zap.String("user_id", user.ID))

	return Session{AccessToken: accessToken, User: NewUserView(user)}, nil
}

func (s *AccountService) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
