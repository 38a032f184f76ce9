package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Perfis de acesso à API
const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
)

type Claims struct {
	UserEmail string `json:"email"`
	UserRole  string `json:"role"`
	jwt.RegisteredClaims
}
