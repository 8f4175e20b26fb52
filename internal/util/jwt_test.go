package util

import (
	"testing"
	"time"

	"edu_diagnosis_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *model.User {
	return &model.User{
		BaseModel:  model.BaseModel{ID: 42},
		Email:      "stu@example.edu",
		Role:       model.Student,
		Department: "计算机",
	}
}

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT(testUser(), "test-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.Student, claims.Role)
	assert.Equal(t, "stu@example.edu", claims.Email)
	assert.Equal(t, "计算机", claims.Department)
}

func TestJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT(testUser(), "right-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "wrong-secret")
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWT_Expired(t *testing.T) {
	token, err := GenerateJWT(testUser(), "test-secret", -time.Minute)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "test-secret")
	assert.Error(t, err)
	assert.Nil(t, claims)
}
