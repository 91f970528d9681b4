package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsplit/internal/domain"
)

type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakeHasher) Hash(salt, password string) (string, error) { return salt + ":" + password, nil }

func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

type fakeIssuer struct {
	expiry time.Duration
}

func (f *fakeIssuer) Issue(userID, _ string, expiry time.Duration) (string, error) {
	f.expiry = expiry
	return "token-" + userID, nil
}

func newAuthService(store *fakeStore, email *fakeEmailService, issuer *fakeIssuer) domain.AuthService {
	return NewAuthService(fakeUserRepo{store}, fakeHasher{}, issuer, email, testLogger, time.Hour, testTimeout)
}

func TestAuthService_SignUp(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid", email: " Ann@Example.com", password: "correct horse"},
		{name: "bad email", email: "ann.example.com", password: "correct horse", wantErr: domain.ErrValidation},
		{name: "short password", email: "ann@example.com", password: "short", wantErr: domain.ErrValidation},
		{name: "taken email", email: "taken@example.com", password: "correct horse", wantErr: domain.ErrDuplicateEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.addUser("taken@example.com", "")
			email := &fakeEmailService{}
			svc := newAuthService(store, email, &fakeIssuer{})

			user, err := svc.SignUp(context.Background(), tt.email, tt.password, " Ann ")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, email.welcome)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, user.ID)
			assert.Equal(t, "ann@example.com", user.Email)
			assert.Equal(t, "Ann", user.FullName)
			assert.Equal(t, "salt:"+tt.password, user.PasswordHash)
			require.Len(t, email.welcome, 1)
			assert.Equal(t, "ann@example.com", email.welcome[0].Email)
		})
	}
}

func TestAuthService_SignUp_WelcomeFailureIsIgnored(t *testing.T) {
	store := newFakeStore()
	svc := newAuthService(store, &fakeEmailService{err: errors.New("ses throttled")}, &fakeIssuer{})

	user, err := svc.SignUp(context.Background(), "ann@example.com", "correct horse", "Ann")
	require.NoError(t, err)
	assert.Contains(t, store.users, user.ID)
}

func TestAuthService_Login(t *testing.T) {
	store := newFakeStore()
	issuer := &fakeIssuer{}
	svc := newAuthService(store, &fakeEmailService{}, issuer)
	ctx := context.Background()
	user, err := svc.SignUp(ctx, "ann@example.com", "correct horse", "Ann")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid", email: "ANN@example.com", password: "correct horse"},
		{name: "wrong password", email: "ann@example.com", password: "battery staple", wantErr: domain.ErrInvalidCredentials},
		{name: "unknown email", email: "bob@example.com", password: "correct horse", wantErr: domain.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, got, err := svc.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "token-"+user.ID, token)
			assert.Equal(t, user.ID, got.ID)
			assert.Equal(t, time.Hour, issuer.expiry)
		})
	}
}
