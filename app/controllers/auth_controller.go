package controllers

import (
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/pkg/ctx"
)

type AuthController struct {
	auth    *services.AuthService
	profile *services.ProfileService
}

func NewAuthController(auth *services.AuthService, profile *services.ProfileService) *AuthController {
	return &AuthController{auth: auth, profile: profile}
}

type refreshInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Register POST /api/auth/register
func (ac *AuthController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := ac.auth.Register(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(res)
}

// Login POST /api/auth/login
func (ac *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := ac.auth.Login(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message("Login successful", res)
}

// Refresh POST /api/auth/refresh. The presented refresh token is revoked.
func (ac *AuthController) Refresh(c *ctx.Context) {
	var in refreshInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := ac.auth.Refresh(c.Context(), in.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}

// Logout POST /api/auth/logout. The refresh token in the body is optional.
func (ac *AuthController) Logout(c *ctx.Context) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if c.R.ContentLength > 0 && !c.BindJSON(&in) {
		return
	}
	if err := ac.auth.Logout(c.Context(), c.Session(), in.RefreshToken); err != nil {
		fail(c, err)
		return
	}
	c.Message("Logged out", nil)
}

// Profile GET /api/profile
func (ac *AuthController) Profile(c *ctx.Context) {
	user, err := ac.profile.Current(c.Context(), c.Session())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(user)
}

// UpdateProfile PUT /api/profile
func (ac *AuthController) UpdateProfile(c *ctx.Context) {
	var in services.ProfileInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := ac.profile.Update(c.Context(), c.Session(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message("Profile updated", user)
}
