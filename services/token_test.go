package services

import (
	"testing"

	"bookinghub/constants"
	apperrors "bookinghub/errors"
	"bookinghub/testutil"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserIDFromToken(t *testing.T) {
	parser := NewTokenParser("bi-mat")

	id, role, err := parser.GetUserIDFromToken(testutil.SignToken(t, "bi-mat", 42, constants.RoleOwner))
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, constants.RoleOwner, role)

	_, _, err = parser.GetUserIDFromToken(testutil.SignToken(t, "sai-khoa", 42, constants.RoleOwner))
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, _, err = parser.GetUserIDFromToken("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	noInfo, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"}).SignedString([]byte("bi-mat"))
	require.NoError(t, err)
	_, _, err = parser.GetUserIDFromToken(noInfo)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidToken))
}
