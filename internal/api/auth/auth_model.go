package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload issued on login.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

type contextKey string

// UserIDKey is the context key under which Authenticate stores the
// authenticated user's ID.
const UserIDKey contextKey = "userID"
