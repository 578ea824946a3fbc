package models

import "github.com/dgrijalva/jwt-go"

// Roles issued by the identity collaborator.
const (
	RoleCustomer = "customer"
	RoleCompany  = "company"
	RoleAdmin    = "admin"
)

type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}
