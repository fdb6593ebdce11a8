package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest carries credentials plus the client details recorded in the
// audit trail.
type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	User        UserInfo  `json:"user"`
}

// UserInfo is the public view of an account. AdmissionNumber is only set
// for student accounts.
type UserInfo struct {
	ID              string   `json:"id"`
	Username        string   `json:"username"`
	FullName        string   `json:"full_name"`
	Role            UserRole `json:"role"`
	AdmissionNumber string   `json:"admission_number,omitempty"`
}

// NewUserInfo builds the public view of u.
func NewUserInfo(u *User) UserInfo {
	info := UserInfo{ID: u.ID, Username: u.Username, FullName: u.FullName, Role: u.Role}
	if u.Role == RoleStudent {
		info.AdmissionNumber = u.Username
	}
	return info
}

// JWTClaims is the access token payload.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Username string   `json:"username"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// AdmissionNumber returns the student the token belongs to, or "" for staff.
func (c *JWTClaims) AdmissionNumber() string {
	if c == nil || c.Role != RoleStudent {
		return ""
	}
	return c.Username
}

// Info mirrors NewUserInfo for an authenticated request.
func (c *JWTClaims) Info() UserInfo {
	return UserInfo{
		ID:              c.UserID,
		Username:        c.Username,
		FullName:        c.FullName,
		Role:            c.Role,
		AdmissionNumber: c.AdmissionNumber(),
	}
}
