package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shashiranjanraj/supplydesk/app/catalog"
	"github.com/shashiranjanraj/supplydesk/app/models"
	"github.com/shashiranjanraj/supplydesk/pkg/auth"
	"github.com/shashiranjanraj/supplydesk/pkg/logger"
)

// ErrInvalidCredentials is returned for a wrong admin username or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserLoginInput struct {
	EmployeeID string `json:"employee_id"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

type AdminLoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"admin_email"`
}

// Session is a signed identity token and the identity it carries.
type Session struct {
	Token    string        `json:"token"`
	Identity auth.Identity `json:"identity"`
}

type AuthService struct {
	creds auth.CredentialProvider
}

func NewAuthService(creds auth.CredentialProvider) *AuthService {
	return &AuthService{creds: creds}
}

// UserLogin issues a user identity. There is no account store: any
// employee id with an allowed email and a known department may sign in.
func (s *AuthService) UserLogin(ctx context.Context, in UserLoginInput) (Session, error) {
	if err := models.ValidateEmail(in.Email); err != nil {
		return Session{}, err
	}
	if strings.TrimSpace(in.EmployeeID) == "" {
		return Session{}, &models.InvalidFieldError{Field: "employee_id", Value: `""`, Reason: "must not be empty"}
	}
	if !catalog.HasDepartment(in.Department) {
		return Session{}, &models.InvalidFieldError{Field: "department", Value: `"` + in.Department + `"`, Reason: "unknown department"}
	}

	id := auth.Identity{
		Subject:    strings.TrimSpace(in.EmployeeID),
		Email:      in.Email,
		Department: in.Department,
		Role:       auth.RoleUser,
	}
	return s.issue(ctx, id)
}

// AdminLogin checks the admin email domain first, then the credentials.
func (s *AuthService) AdminLogin(ctx context.Context, in AdminLoginInput) (Session, error) {
	if err := models.ValidateEmail(in.Email); err != nil {
		return Session{}, err
	}
	if !s.creds.Verify(in.Username, in.Password) {
		logger.WithCtx(ctx).Warn("admin login rejected", "username", in.Username)
		return Session{}, ErrInvalidCredentials
	}

	id := auth.Identity{Subject: in.Username, Email: in.Email, Role: auth.RoleAdmin}
	return s.issue(ctx, id)
}

func (s *AuthService) issue(ctx context.Context, id auth.Identity) (Session, error) {
	token, err := auth.GenerateToken(id)
	if err != nil {
		return Session{}, err
	}
	logger.WithCtx(ctx).Info("signed in", "subject", id.Subject, "role", id.Role)
	return Session{Token: token, Identity: id}, nil
}
