package model

import "github.com/golang-jwt/jwt/v5"

// AdminClaims are the JWT claims for admin API tokens.
type AdminClaims struct {
	AdminID  string `json:"adminId"`
	TenantID string `json:"tenantId,omitempty"`
	jwt.RegisteredClaims
}

// LoginRequest is the login endpoint request body. An empty TenantID
// yields an unscoped token valid for every tenant.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TenantID string `json:"tenantId,omitempty"`
}

// LoginResponse is returned by the login endpoint.
type LoginResponse struct {
	Token    string `json:"token"`
	AdminID  string `json:"adminId"`
	TenantID string `json:"tenantId,omitempty"`
}
