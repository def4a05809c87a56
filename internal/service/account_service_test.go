package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexindevs/orgbase/internal/domain"
	"github.com/alexindevs/orgbase/internal/service"
	"github.com/alexindevs/orgbase/internal/token"
)

func newAccountService(store *memoryStore) (*service.AccountService, *token.Issuer) {
	issuer := token.NewIssuer("test-secret", 0)
	return service.NewAccountService(store, store, issuer, zap.NewNop()), issuer
}

func registerInput(email string) service.RegistrationInput {
	return service.RegistrationInput{
		FirstName: "John",
		LastName:  "Doe",
		Email:     email,
		Password:  "hunter2!",
		Phone:     "08012345678",
	}
}

func TestRegisterCreatesDefaultOrganisation(t *testing.T) {
	store := newMemoryStore()
	svc, issuer := newAccountService(store)

	reg, err := svc.Register(context.Background(), registerInput("john@example.com"))
	require.NoError(t, err)
	require.NotEmpty(t, reg.AccessToken)
	require.Equal(t, "john@example.com", reg.User.Email)
	require.Equal(t, "John's Organisation", reg.Organisation.Name)

	claims, err := issuer.Verify(reg.AccessToken)
	require.NoError(t, err)
	require.Equal(t, reg.User.UserID, claims.UserID)
	require.Equal(t, "john@example.com", claims.Email)

	members, err := store.Members(context.Background(), reg.Organisation.OrgID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, reg.User.UserID, members[0].ID)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	store := newMemoryStore()
	svc, _ := newAccountService(store)

	reg, err := svc.Register(context.Background(), registerInput("  John@Example.COM "))
	require.NoError(t, err)
	require.Equal(t, "john@example.com", reg.User.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newMemoryStore()
	svc, _ := newAccountService(store)

	_, err := svc.Register(context.Background(), registerInput("john@example.com"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerInput("john@example.com"))
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegisterDuplicateWinsAtInsert(t *testing.T) {
	// The insert-time uniqueness violation must map to Conflict even when
	// the pre-check raced and saw no user.
	store := newMemoryStore()
	svc, _ := newAccountService(store)

	store.mu.Lock()
	store.emails["john@example.com"] = "someone-else"
	store.hideEmails = true
	store.mu.Unlock()

	_, err := svc.Register(context.Background(), registerInput("john@example.com"))
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegisterIsAtomic(t *testing.T) {
	store := newMemoryStore()
	store.failOrgCreate = true
	svc, _ := newAccountService(store)

	_, err := svc.Register(context.Background(), registerInput("john@example.com"))
	require.Error(t, err)

	// Nothing from the failed registration may persist.
	_, err = store.GetByEmail(context.Background(), "john@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLogin(t *testing.T) {
	store := newMemoryStore()
	svc, issuer := newAccountService(store)

	reg, err := svc.Register(context.Background(), registerInput("john@example.com"))
	require.NoError(t, err)

	sess, err := svc.Login(context.Background(), "john@example.com", "hunter2!")
	require.NoError(t, err)
	require.Equal(t, reg.User.UserID, sess.User.UserID)

	claims, err := issuer.Verify(sess.AccessToken)
	require.NoError(t, err)
	require.Equal(t, reg.User.UserID, claims.UserID)
}

func TestLoginFailureIsUniform(t *testing.T) {
	store := newMemoryStore()
	svc, _ := newAccountService(store)

	_, err := svc.Register(context.Background(), registerInput("john@example.com"))
	require.NoError(t, err)

	_, wrongPassword := svc.Login(context.Background(), "john@example.com", "not-the-password")
	_, unknownEmail := svc.Login(context.Background(), "nobody@example.com", "hunter2!")

	// Wrong password and unknown email must be indistinguishable.
	require.ErrorIs(t, wrongPassword, domain.ErrAuthentication)
	require.ErrorIs(t, unknownEmail, domain.ErrAuthentication)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}
