package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/pkg/auth"
	"github.com/shashiranjanraj/vastra/pkg/logger"
	"github.com/shashiranjanraj/vastra/pkg/rbac"
	"github.com/shashiranjanraj/vastra/pkg/session"
)

// ErrInvalidToken is returned for a refresh token that is malformed,
// expired or revoked.
var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService registers customers and issues, rotates and revokes tokens.
type AuthService struct {
	repos   *repositories.Repos
	issuer  *auth.Issuer
	revoked session.Revocations
}

func NewAuthService(repos *repositories.Repos, issuer *auth.Issuer, revoked session.Revocations) *AuthService {
	return &AuthService{repos: repos, issuer: issuer, revoked: revoked}
}

type RegisterInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
	Email     string `json:"email"      validate:"required,email,max=255"`
	Phone     string `json:"phone"      validate:"nullable,phone"`
	Password  string `json:"password"   validate:"required,min=8,max=72,confirmed"`
	// PasswordConfirmation is matched by the confirmed rule.
	PasswordConfirmation string `json:"password_confirmation"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register, login and refresh.
type AuthResult struct {
	User   models.User    `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

// Register creates a customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := check(in); err != nil {
		return AuthResult{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, err
	}
	user := models.User{
		Email:     in.Email,
		Password:  hash,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      rbac.RoleCustomer,
	}
	if err := s.repos.Users.Create(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, err
	}
	logger.WithCtx(ctx).Info("user registered", "user_id", user.ID)
	return s.issue(user)
}

// Login checks the password and issues a token pair. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := check(in); err != nil {
		return AuthResult{}, err
	}
	user, err := s.repos.Users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return AuthResult{}, ErrInvalidLogin
	}
	if err != nil {
		return AuthResult{}, err
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return AuthResult{}, ErrInvalidLogin
	}
	return s.issue(user)
}

// Refresh trades a refresh token for a new pair. The old refresh token is
// revoked so each one works once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	claims, err := s.issuer.Parse(strings.TrimSpace(refreshToken), auth.Refresh)
	if err != nil {
		return AuthResult{}, ErrInvalidToken
	}
	if s.revoked != nil {
		gone, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return AuthResult{}, err
		}
		if gone {
			return AuthResult{}, ErrInvalidToken
		}
	}

	user, err := s.repos.Users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return AuthResult{}, ErrInvalidToken
	}
	if err != nil {
		return AuthResult{}, err
	}

	if s.revoked != nil && claims.ExpiresAt != nil {
		if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return AuthResult{}, err
		}
	}
	return s.issue(user)
}

// Logout revokes the caller's access token and, when given, their refresh
// token.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session, refreshToken string) error {
	if !sess.SignedIn() {
		return ErrSignInRequired
	}
	if s.revoked == nil {
		return nil
	}
	if sess.TokenID != "" {
		if err := s.revoked.Revoke(ctx, sess.TokenID, sess.ExpiresAt); err != nil {
			return err
		}
	}
	if refreshToken = strings.TrimSpace(refreshToken); refreshToken != "" {
		claims, err := s.issuer.Parse(refreshToken, auth.Refresh)
		if err == nil && claims.UserID == sess.UserID && claims.ExpiresAt != nil {
			return s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
		}
	}
	return nil
}

func (s *AuthService) issue(user models.User) (AuthResult, error) {
	pair, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Tokens: pair}, nil
}

// ProfileService reads and edits the signed-in user's own profile.
type ProfileService struct {
	repos *repositories.Repos
}

func NewProfileService(repos *repositories.Repos) *ProfileService {
	return &ProfileService{repos: repos}
}

// Current fetches the profile behind the session's user id.
func (s *ProfileService) Current(ctx context.Context, sess *session.Session) (models.User, error) {
	if !sess.SignedIn() {
		return models.User{}, ErrSignInRequired
	}
	return s.repos.Users.FindByID(ctx, sess.UserID)
}

type ProfileInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
	Phone     string `json:"phone"      validate:"nullable,phone"`
	AvatarURL string `json:"avatar_url" validate:"nullable,url"`
}

func (s *ProfileService) Update(ctx context.Context, sess *session.Session, in ProfileInput) (models.User, error) {
	user, err := s.Current(ctx, sess)
	if err != nil {
		return models.User{}, err
	}
	if err := check(in); err != nil {
		return models.User{}, err
	}
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Phone = strings.TrimSpace(in.Phone)
	user.AvatarURL = strings.TrimSpace(in.AvatarURL)
	if err := s.repos.Users.Update(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}
