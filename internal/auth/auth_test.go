package auth

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen/internal/domain"
)

func TestHasher_VerifyRoundTrip(t *testing.T) {
	h := NewHasher(4)

	digest, err := h.Hash("s3cret!")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret!", digest)
	assert.True(t, h.Verify("s3cret!", digest))
	assert.False(t, h.Verify("s3cret?", digest), "one changed character must flip the result")
	assert.False(t, h.Verify("", digest))
}

func TestHasher_DigestsAreSalted(t *testing.T) {
	h := NewHasher(4)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same", a))
	assert.True(t, h.Verify("same", b))
}

func TestHasher_VerifyMissingAlwaysFails(t *testing.T) {
	assert.False(t, NewHasher(4).VerifyMissing("anything"))
}

func TestNewResetCode_SixDigits(t *testing.T) {
	re := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		code, err := NewResetCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
	}
}

func TestTokens_IssueAndParse(t *testing.T) {
	tokens := NewTokens("0123456789abcdef", time.Hour)

	signed, exp, err := tokens.Issue(domain.User{ID: 9, Username: "kim", Role: domain.RoleStaff})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)
	assert.Equal(t, "kim", claims.Username)
	assert.Equal(t, domain.RoleStaff, claims.Role)
}

func TestTokens_RejectsExpired(t *testing.T) {
	tokens := NewTokens("0123456789abcdef", time.Minute)
	tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
	signed, _, err := tokens.Issue(domain.User{ID: 1, Role: domain.RoleCustomer})
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Parse(signed)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokens_RejectsForeignSecret(t *testing.T) {
	signed, _, err := NewTokens("0123456789abcdef", time.Hour).Issue(domain.User{ID: 1})
	require.NoError(t, err)

	_, err = NewTokens("fedcba9876543210", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
