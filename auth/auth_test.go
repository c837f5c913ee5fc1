package auth

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MyPassw0rdIsStr0ng!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	// Wrong password
	match, err = ComparePassword("WrongPassword", hash)
	req.NoError(err)
	req.False(match)

	// Garbage hash
	_, err = ComparePassword(password, "$bcrypt$nope")
	req.Error(err)
}

func TestNormalizeSignup(t *testing.T) {
	req := require.New(t)
	signup := SignupRequest{Email: "  Alice@Example.COM ", Username: "  alice ", Password: " ComplexPass123! "}

	req.NoError(NormalizeSignup(&signup))

	req.Equal("alice@example.com", signup.Email)
	req.Equal("alice", signup.Username)
	req.Equal(" ComplexPass123! ", signup.Password)
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     SignupRequest
		wantErr bool
	}{
		{"Valid request", SignupRequest{"test@example.com", "alice", "ComplexPass123!"}, false},
		{"Invalid email", SignupRequest{"notanemail", "alice", "ComplexPass123!"}, true},
		{"Username too short", SignupRequest{"test@example.com", "al", "ComplexPass123!"}, true},
		{"Username with spaces", SignupRequest{"test@example.com", "al ice", "ComplexPass123!"}, true},
		{"Password too short", SignupRequest{"test@example.com", "alice", "Sh1!"}, true},
		{"Missing digit", SignupRequest{"test@example.com", "alice", "NoDigitPass!"}, true},
		{"Missing special char", SignupRequest{"test@example.com", "alice", "NoSpecialChar123"}, true},
		{"Password too long", SignupRequest{"test@example.com", "alice", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := ValidateSignup(tt.req)
			if !tt.wantErr {
				req.NoError(err)
				return
			}
			req.Error(err)
			req.Equal(errors.KindBadRequest, errors.KindOf(err))
		})
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test-secret", time.Hour)
	user := domain.User{ID: "user-123", Username: "alice"}

	token, err := manager.GenerateToken(user)
	req.NoError(err)

	userID, err := manager.Verify(token)
	req.NoError(err)
	req.Equal(user.ID, userID)

	claims, err := manager.ValidateToken(token)
	req.NoError(err)
	req.Equal("alice", claims.Username)
}

func TestTokenManager_Rejects(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)
	user := domain.User{ID: "user-123", Username: "alice"}

	otherSecret, err := NewTokenManager("other-secret", time.Hour).GenerateToken(user)
	require.NoError(t, err)

	expiredManager := NewTokenManager("test-secret", time.Hour)
	expiredManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredManager.GenerateToken(user)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "invalid-token-string"},
		{"wrong secret", otherSecret},
		{"expired", expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			_, err := manager.Verify(tt.token)
			req.Error(err)
			req.Equal(errors.KindUnauthenticated, errors.KindOf(err))
		})
	}
}

func TestBearerToken(t *testing.T) {
	req := require.New(t)

	token, ok := BearerToken("Bearer abc.def")
	req.True(ok)
	req.Equal("abc.def", token)

	token, ok = BearerToken("bearer abc")
	req.True(ok)
	req.Equal("abc", token)

	_, ok = BearerToken("Basic abc")
	req.False(ok)
	_, ok = BearerToken("Bearer ")
	req.False(ok)
}
