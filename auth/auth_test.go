package auth

import (
	"context"
	"testing"
	"time"

	"github.com/bluesky-social/labeld/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "did:example:moderator"
	testAudience = "did:example:labeler"
)

func testValidator(t *testing.T) (*ServiceAuthValidator, *crypto.PrivateKeyK256) {
	t.Helper()

	priv, err := crypto.GeneratePrivateKeyK256()
	require.NoError(t, err)
	pub, err := priv.PublicKey()
	require.NoError(t, err)

	v := NewServiceAuthValidator(testAudience, StaticResolver{testIssuer: pub})
	return v, priv
}

func TestServiceAuthRoundTrip(t *testing.T) {
	ctx := context.Background()
	v, priv := testValidator(t)

	tok, err := SignServiceAuth(testIssuer, testAudience, time.Minute, priv)
	require.NoError(t, err)

	did, err := v.Validate(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, testIssuer, did)
}

func TestServiceAuthWrongAudience(t *testing.T) {
	ctx := context.Background()
	v, priv := testValidator(t)

	tok, err := SignServiceAuth(testIssuer, "did:example:somebody-else", time.Minute, priv)
	require.NoError(t, err)

	_, err = v.Validate(ctx, tok)
	assert.Error(t, err)
}

func TestServiceAuthExpired(t *testing.T) {
	ctx := context.Background()
	v, priv := testValidator(t)

	tok, err := SignServiceAuth(testIssuer, testAudience, -time.Minute, priv)
	require.NoError(t, err)

	_, err = v.Validate(ctx, tok)
	assert.Error(t, err)
}

func TestServiceAuthUnknownIssuer(t *testing.T) {
	ctx := context.Background()
	v, _ := testValidator(t)

	other, err := crypto.GeneratePrivateKeyK256()
	require.NoError(t, err)

	tok, err := SignServiceAuth("did:example:stranger", testAudience, time.Minute, other)
	require.NoError(t, err)

	_, err = v.Validate(ctx, tok)
	assert.Error(t, err)
}

func TestServiceAuthWrongKey(t *testing.T) {
	ctx := context.Background()
	v, _ := testValidator(t)

	// token signed by a different key than the one registered for the
	// issuer
	imposter, err := crypto.GeneratePrivateKeyK256()
	require.NoError(t, err)

	tok, err := SignServiceAuth(testIssuer, testAudience, time.Minute, imposter)
	require.NoError(t, err)

	_, err = v.Validate(ctx, tok)
	assert.Error(t, err)
}

func TestServiceAuthGarbage(t *testing.T) {
	ctx := context.Background()
	v, _ := testValidator(t)

	_, err := v.Validate(ctx, "not-a-jwt")
	assert.Error(t, err)
}
