package loadgen

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		BaseURL:             "http://localhost:8080",
		JWTSecret:           "test-secret",
		Users:               3,
		ScopesPerUser:       4,
		SubmissionsPerScope: 5,
	}
}

func TestBuildPlan_Shape(t *testing.T) {
	cfg := testConfig()
	plan, err := BuildPlan(cfg)
	require.NoError(t, err)

	require.Len(t, plan.Users, 3)
	assert.Equal(t, 60, plan.TotalSubmissions(cfg))

	seenUsers := make(map[string]bool)
	for _, user := range plan.Users {
		assert.False(t, seenUsers[user.UserID], "user ids must be unique")
		seenUsers[user.UserID] = true
		require.Len(t, user.Scopes, 4)

		// Scopes within one user must not collide: each is its own
		// competitive slot.
		seenScopes := make(map[string]bool)
		for _, scope := range user.Scopes {
			key := scope.RestaurantID + "|" + scope.DishType
			assert.False(t, seenScopes[key], "scopes must be distinct per user")
			seenScopes[key] = true
		}
	}
}

func TestBuildPlan_TokensVerify(t *testing.T) {
	plan, err := BuildPlan(testConfig())
	require.NoError(t, err)

	token, err := jwt.Parse(plan.Users[0].Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, plan.Users[0].UserID, claims["user_id"])
}

func TestBuildPlan_Invalid(t *testing.T) {
	cfg := testConfig()
	cfg.Users = 0
	_, err := BuildPlan(cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.JWTSecret = ""
	_, err = BuildPlan(cfg)
	assert.Error(t, err)
}
