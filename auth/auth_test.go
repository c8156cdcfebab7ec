package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MonMotDePasseTr0pSûr!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("MauvaisMDP", hash)
	req.NoError(err)
	req.False(match)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"test@example.com", "alice", "ComplexPass123!"}, false},
		{"Invalid email", RegisterRequest{"notanemail", "alice", "ComplexPass123!"}, true},
		{"Missing username", RegisterRequest{"test@example.com", "", "ComplexPass123!"}, true},
		{"Username with spaces", RegisterRequest{"test@example.com", "a lice", "ComplexPass123!"}, true},
		{"Password too short", RegisterRequest{"test@example.com", "alice", "Short1!"}, true},
		{"Missing digit", RegisterRequest{"test@example.com", "alice", "NoDigitPassword!"}, true},
		{"Missing special char", RegisterRequest{"test@example.com", "alice", "NoSpecialChar123"}, true},
		{"Missing uppercase", RegisterRequest{"test@example.com", "alice", "nouppercase123!"}, true},
		{"Password too long (edge case)", RegisterRequest{"test@example.com", "alice", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test_secret_key_for_unit_tests", time.Hour)

	token, err := manager.GenerateToken("user-42", "alice", []string{"user"})
	req.NoError(err)

	claims, err := manager.ValidateToken(token)
	req.NoError(err)
	req.Equal("user-42", claims.UserID)
	req.Equal("alice", claims.Username)
	req.Equal([]string{"user"}, claims.Roles)
}

func TestValidateToken_Rejects_Wrong_Secret(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test_secret_key_for_unit_tests", time.Hour)
	other := NewTokenManager("a_completely_different_secret", time.Hour)

	token, err := manager.GenerateToken("user-42", "alice", []string{"user"})
	req.NoError(err)

	_, err = other.ValidateToken(token)
	req.Error(err)
}

func TestValidateToken_Rejects_Expired(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test_secret_key_for_unit_tests", -time.Minute)

	token, err := manager.GenerateToken("user-42", "alice", []string{"user"})
	req.NoError(err)

	_, err = manager.ValidateToken(token)
	req.Error(err)
}

func TestIdentify_Resolves_Header_Query_And_Anonymous(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test_secret_key_for_unit_tests", time.Hour)
	token, err := manager.GenerateToken("user-42", "alice", []string{"user"})
	req.NoError(err)

	// Given a Bearer header
	withHeader := httptest.NewRequest("GET", "/api/rooms/lobby/messages", nil)
	withHeader.Header.Set("Authorization", "Bearer "+token)
	claims, err := manager.Identify(withHeader)
	req.NoError(err)
	req.Equal("alice", claims.Username)

	// Given a token query parameter (websocket handshake path)
	withQuery := httptest.NewRequest("GET", "/ws/chat/lobby/?token="+token, nil)
	claims, err = manager.Identify(withQuery)
	req.NoError(err)
	req.Equal("alice", claims.Username)

	// Given no token at all
	anonymous := httptest.NewRequest("GET", "/ws/chat/lobby/", nil)
	claims, err = manager.Identify(anonymous)
	req.NoError(err)
	req.Nil(claims)
}

func TestRequireAuth_Injects_Identity_Into_Context(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test_secret_key_for_unit_tests", time.Hour)
	token, err := manager.GenerateToken("user-42", "alice", []string{"user"})
	req.NoError(err)

	var seen string
	handler := manager.RequireAuth(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = UsernameFromContext(r.Context())
	}))

	// Given a valid token, the inner handler sees the caller's username
	withToken := httptest.NewRequest("GET", "/api/rooms/lobby/members", nil)
	withToken.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, withToken)
	req.Equal(http.StatusOK, recorder.Code)
	req.Equal("alice", seen)

	// Without a token the guard answers 401 and the handler never runs
	seen = ""
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/rooms/lobby/members", nil))
	req.Equal(http.StatusUnauthorized, recorder.Code)
	req.Empty(seen)
}

// BenchmarkHashPassword measures the CPU/RAM impact of the Argon2 parameters
func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
