package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tickethive/ticketing/internal/models"
	"gorm.io/gorm"
)

// --- Mock UserRepository ---

type mockUserRepo struct {
	users     map[string]*models.User // keyed by email
	createErr error
	saveErr   error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Save(ctx context.Context, user *models.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.users[user.Email] = user
	return nil
}

func newAuthService(repo *mockUserRepo) AuthService {
	return NewAuthService(repo, "test-secret", time.Hour)
}

// --- Tests ---

func TestRegister_DefaultsToUserRole(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	user, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", "")

	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
}

func TestRegister_RejectsAdminRole(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	_, err := svc.Register(context.Background(), "Eve", "eve@example.com", "s3cret", models.RoleAdmin)

	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", models.RoleUser)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Alice Again", "alice@example.com", "other", models.RoleUser)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

// Two registrations can pass the lookup before either inserts; the loser hits
// the unique index and must still come back as ErrEmailTaken, not a raw error.
func TestRegister_DuplicateEmailRace(t *testing.T) {
	repo := newMockUserRepo()
	repo.createErr = gorm.ErrDuplicatedKey
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", models.RoleUser)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_TokenRoundTrip(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	user, err := svc.Register(context.Background(), "Olga", "olga@example.com", "s3cret", models.RoleOrganizer)
	require.NoError(t, err)

	token, loggedIn, err := svc.Login(context.Background(), "olga@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	principal, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.ID)
	assert.Equal(t, models.RoleOrganizer, principal.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", models.RoleUser)
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseToken_Garbage(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	_, err := svc.ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestParseToken_WrongSecret(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", models.RoleUser)
	require.NoError(t, err)

	token, _, err := svc.Login(context.Background(), "alice@example.com", "s3cret")
	require.NoError(t, err)

	other := NewAuthService(repo, "different-secret", time.Hour)
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestUpdateProfile_ChangesNameAndEmail(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	user, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", models.RoleUser)
	require.NoError(t, err)

	principal := models.Principal{ID: user.ID, Role: user.Role}
	updated, err := svc.UpdateProfile(context.Background(), principal, "Alicia", "alicia@example.com")

	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "alicia@example.com", updated.Email)
}

func TestUpdateProfile_DuplicateEmailRace(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	user, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", models.RoleUser)
	require.NoError(t, err)

	repo.saveErr = gorm.ErrDuplicatedKey
	principal := models.Principal{ID: user.ID, Role: user.Role}
	_, err = svc.UpdateProfile(context.Background(), principal, "", "taken@example.com")
	assert.ErrorIs(t, err, ErrEmailTaken)
}
