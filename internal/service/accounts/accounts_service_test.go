package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmsync/internal/domain/models"
	"github.com/mamadbah2/farmsync/internal/repository/mongodb"
)

type memStore struct{ users map[string]models.User }

func (m *memStore) InsertUser(_ context.Context, u models.User) error {
	if _, ok := m.users[u.Email]; ok {
		return mongodb.ErrDuplicate
	}
	m.users[u.Email] = u
	return nil
}

func (m *memStore) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	u, ok := m.users[email]
	if !ok {
		return models.User{}, mongodb.ErrNotFound
	}
	return u, nil
}

type fakeTokens struct{}

func (fakeTokens) GenerateToken(userID, _ string) (string, error) { return "token-" + userID, nil }

func newService() (*Service, *memStore) {
	store := &memStore{users: map[string]models.User{}}
	return NewService(store, fakeTokens{}, nil), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, store := newService()

	user, err := svc.Register(context.Background(), models.RegisterRequest{Email: " Farmer@Example.com ", Password: "secret1", Name: "Farmer"})
	require.NoError(t, err)
	assert.Equal(t, "farmer@example.com", user.Email)
	assert.NotEqual(t, "secret1", store.users["farmer@example.com"].PasswordHash)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "farmer@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.UserID)
	assert.Equal(t, "token-"+user.ID, resp.Token)
	assert.Equal(t, "Login successful", resp.Message)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newService()
	req := models.RegisterRequest{Email: "a@b.test", Password: "secret1", Name: "A"}

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "not-an-email", Password: "secret1", Name: "A"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Register(context.Background(), models.RegisterRequest{Email: "a@b.test", Password: "123", Name: "A"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "a@b.test", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "a@b.test", Password: "wrong"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "ghost@b.test", Password: "secret1"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}
