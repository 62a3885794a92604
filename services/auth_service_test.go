package services

import (
	"chat-hub/auth"
	"chat-hub/errors"
	"chat-hub/repositories"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) IAuthService {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAuthService(repositories.NewUserRepository(db), time.Hour)
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	req := require.New(t)
	service := newTestAuthService(t)

	token, err := service.Register("alice42", "ComplexPass123!")
	req.NoError(err)
	req.NotEmpty(token)

	// The issued token carries the username
	claims, err := auth.ValidateToken(string(token))
	req.NoError(err)
	req.Equal("alice42", claims.Username)

	token, err = service.Login("alice42", "ComplexPass123!")
	req.NoError(err)
	req.NotEmpty(token)
}

func TestAuthService_RegisterRejectsWeakPassword(t *testing.T) {
	req := require.New(t)
	service := newTestAuthService(t)

	_, err := service.Register("alice42", "weak")
	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	req := require.New(t)
	service := newTestAuthService(t)

	_, err := service.Register("alice42", "ComplexPass123!")
	req.NoError(err)

	_, err = service.Register("alice42", "OtherComplex123!")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	req := require.New(t)
	service := newTestAuthService(t)

	_, err := service.Register("alice42", "ComplexPass123!")
	req.NoError(err)

	_, err = service.Login("alice42", "NotThePassword1!")
	req.ErrorIs(err, errors.ErrInvalidCredentials)

	_, err = service.Login("nobody", "ComplexPass123!")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}
