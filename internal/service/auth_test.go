package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/deck-hub/internal/apperror"
	"github.com/sakif/deck-hub/internal/auth"
	"github.com/sakif/deck-hub/internal/model"
)

// mockUserRepo is an in-memory repository.UserRepository.
type mockUserRepo struct {
	byEmail    map[string]*model.User
	byID       map[string]*model.User
	byGitHubID map[int64]*model.User
	nextID     int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byEmail:    make(map[string]*model.User),
		byID:       make(map[string]*model.User),
		byGitHubID: make(map[int64]*model.User),
	}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if _, ok := m.byEmail[user.Email]; ok {
		return apperror.Conflict("user", "email is already registered")
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *user
	m.byEmail[user.Email] = &stored
	m.byID[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) UpsertGitHubUser(_ context.Context, user *model.User) error {
	if existing, ok := m.byGitHubID[user.GitHubID]; ok {
		user.ID = existing.ID
		existing.Email = user.Email
		return nil
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *user
	m.byGitHubID[user.GitHubID] = &stored
	m.byID[user.ID] = &stored
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	require.NoError(t, err)
	// Low bcrypt cost keeps the suite fast.
	passwords := auth.NewPasswordServiceForTest(4)
	return NewAuthService(repo, passwords, tokens, testLogger()), repo
}

func TestRegister(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user, token, err := svc.Register(context.Background(), "Alice@Example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email, "email is normalized")
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "alice@example.com", "differentpass")
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "not-an-email", "hunter2hunter2")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, _, err = svc.Register(ctx, "alice@example.com", "short")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, _, wrongPass := svc.Login(ctx, "alice@example.com", "wrongpassword")
	_, _, unknownEmail := svc.Login(ctx, "nobody@example.com", "hunter2hunter2")

	assert.ErrorIs(t, wrongPass, apperror.ErrValidation)
	assert.ErrorIs(t, unknownEmail, apperror.ErrValidation)
	// Identical messages: the response must not reveal which emails exist.
	assert.Equal(t, wrongPass.Error(), unknownEmail.Error())
}

func TestLogin_OAuthOnlyAccountHasNoPassword(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()

	ghAccount := &model.User{Email: "gh@example.com", GitHubID: 99}
	require.NoError(t, repo.UpsertGitHubUser(ctx, ghAccount))
	repo.byEmail["gh@example.com"] = repo.byID[ghAccount.ID]

	_, _, err := svc.Login(ctx, "gh@example.com", "anything")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLoginOrRegisterGitHub(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	ghUser := &auth.GitHubUser{ID: 12345, Login: "alice", Email: "alice@example.com"}

	first, token, err := svc.LoginOrRegisterGitHub(ctx, ghUser)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Same GitHub account signs in again: same internal user.
	second, _, err := svc.LoginOrRegisterGitHub(ctx, ghUser)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestLoginOrRegisterGitHub_HiddenEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	ghUser := &auth.GitHubUser{ID: 777, Login: "ghost"}
	user, _, err := svc.LoginOrRegisterGitHub(context.Background(), ghUser)
	require.NoError(t, err)
	assert.Equal(t, "ghost@users.noreply.github.com", user.Email)
}
