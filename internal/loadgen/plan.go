// Package loadgen drives a running PlateHub API with concurrent ranking
// submissions and then verifies the one-best invariant through the public
// surface. It is a verification harness, not part of the request path.
package loadgen

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config controls one load run.
type Config struct {
	BaseURL             string
	JWTSecret           string
	Users               int
	ScopesPerUser       int
	SubmissionsPerScope int
	Workers             int
	RatePerSecond       float64
}

// dishTypes is the pool the plan draws scope dish types from.
var dishTypes = []string{
	"nasi-lemak", "laksa", "char-kway-teow", "chicken-rice",
	"roti-prata", "satay", "bak-kut-teh", "hokkien-mee",
}

// Scope is one competitive slot the run will contend on.
type Scope struct {
	RestaurantID string
	DishType     string
	DishID       string
}

// UserPlan is one synthetic user: their id, a pre-minted bearer token, and
// the scopes their submissions will target.
type UserPlan struct {
	UserID string
	Token  string
	Scopes []Scope
}

// Plan is the full set of users and scopes for a run.
type Plan struct {
	Users []UserPlan
}

// BuildPlan mints users, tokens and scopes. Every submission in the run
// claims rank 1, so each scope sees SubmissionsPerScope competing #1 claims
// and must end the run with exactly one.
func BuildPlan(cfg Config) (*Plan, error) {
	if cfg.Users < 1 || cfg.ScopesPerUser < 1 || cfg.SubmissionsPerScope < 1 {
		return nil, fmt.Errorf("users, scopes per user and submissions per scope must all be positive")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required to mint tokens")
	}

	plan := &Plan{Users: make([]UserPlan, 0, cfg.Users)}
	for i := 0; i < cfg.Users; i++ {
		userID := uuid.New().String()
		token, err := mintToken(userID, cfg.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to mint token for user %d: %w", i, err)
		}

		scopes := make([]Scope, 0, cfg.ScopesPerUser)
		for j := 0; j < cfg.ScopesPerUser; j++ {
			scopes = append(scopes, Scope{
				RestaurantID: uuid.New().String(),
				DishType:     dishTypes[j%len(dishTypes)],
				DishID:       uuid.New().String(),
			})
		}
		plan.Users = append(plan.Users, UserPlan{
			UserID: userID,
			Token:  token,
			Scopes: scopes,
		})
	}
	return plan, nil
}

// TotalSubmissions reports how many submissions the plan will fire.
func (p *Plan) TotalSubmissions(cfg Config) int {
	return len(p.Users) * cfg.ScopesPerUser * cfg.SubmissionsPerScope
}

// mintToken issues an HS256 token the API's identity adapter accepts,
// standing in for the external identity provider.
func mintToken(userID, secret string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
