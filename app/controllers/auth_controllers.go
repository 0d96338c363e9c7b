package controllers

import (
	"errors"

	"github.com/shashiranjanraj/supplydesk/app/services"
	"github.com/shashiranjanraj/supplydesk/pkg/ctx"
	"github.com/shashiranjanraj/supplydesk/pkg/logger"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Login signs an employee in: {"employee_id","email","department"}.
func (c *AuthController) Login(cx *ctx.Context) {
	var body services.UserLoginInput
	if !cx.BindJSON(&body) {
		return
	}

	session, err := c.service.UserLogin(cx.Context(), body)
	if err != nil {
		fail(cx, err)
		return
	}
	cx.Success(session)
}

// AdminLogin signs an admin in: {"username","password","admin_email"}.
func (c *AuthController) AdminLogin(cx *ctx.Context) {
	var body services.AdminLoginInput
	if !cx.BindJSON(&body) {
		return
	}

	session, err := c.service.AdminLogin(cx.Context(), body)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			logger.WithCtx(cx.Context()).Warn("admin login rejected", "username", body.Username, "ip", cx.ClientIP())
		}
		fail(cx, err)
		return
	}
	cx.Success(session)
}
