package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	manager, err := NewJWTManager("test-secret")
	require.NoError(t, err)

	token, err := manager.CreateToken("u1")
	require.NoError(t, err)

	claims, err := manager.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
}

func TestJWTRejectsForeignSignature(t *testing.T) {
	issuer, err := NewJWTManager("secret-a")
	require.NoError(t, err)
	verifier, err := NewJWTManager("secret-b")
	require.NoError(t, err)

	token, err := issuer.CreateToken("u1")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	require.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	manager, err := NewJWTManager("test-secret")
	require.NoError(t, err)

	_, err = manager.VerifyToken("not-a-token")
	require.Error(t, err)
}

func TestJWTRequiresSecret(t *testing.T) {
	_, err := NewJWTManager("")
	require.Error(t, err)
}
