package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

func TestGenerateYParse(t *testing.T) {
	tok, exp, err := pkgjwt.Generate("secret", "u-1", "admin@example.com", "admin", "test", 30)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 5*time.Second)

	claims, err := pkgjwt.Parse("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, _, err := pkgjwt.Generate("secret", "u-1", "a@b.c", "admin", "test", 30)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, _, err := pkgjwt.Generate("secret", "u-1", "a@b.c", "admin", "test", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("secret", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, _, err := pkgjwt.Generate("", "u-1", "a@b.c", "admin", "test", 30)
	assert.Error(t, err)
}
