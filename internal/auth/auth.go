// Package auth is the authentication boundary: accounts with bcrypt
// password hashes, HS256 session tokens and single-use reset links.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/logger"
	"github.com/MrSnakeDoc/serene/internal/mailer"
	"github.com/MrSnakeDoc/serene/internal/store"
)

const (
	issuer            = "serene"
	minPasswordLength = 6
)

// User is the public profile of an account
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func userOf(acc domain.Account) User {
	return User{
		ID:          acc.ID,
		Email:       acc.Email,
		DisplayName: acc.DisplayName,
		PhotoURL:    acc.PhotoURL,
		CreatedAt:   acc.CreatedAt,
	}
}

// Session is an authenticated request's identity
type Session struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// Result is returned by sign-up and sign-in
type Result struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ProfileUpdate changes only the fields that are set
type ProfileUpdate struct {
	DisplayName *string `json:"displayName,omitempty"`
	PhotoURL    *string `json:"photoURL,omitempty"`
}

// Provider is what the HTTP layer needs from auth
type Provider interface {
	SignUp(ctx context.Context, email, password, displayName string) (Result, error)
	SignIn(ctx context.Context, email, password string) (Result, error)
	SignOut(ctx context.Context, s Session) error
	SendPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, password string) error
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (User, error)
	Profile(ctx context.Context, userID string) (User, error)
	Verify(ctx context.Context, token string) (Session, error)
}

// Options configures a Service
type Options struct {
	Secret     string
	TokenTTL   time.Duration
	ResetTTL   time.Duration
	ResetURL   string
	BcryptCost int // zero => bcrypt.DefaultCost
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service implements Provider over an account store
type Service struct {
	accounts store.Accounts
	mail     mailer.Mailer
	log      logger.Logger

	secret   []byte
	tokenTTL time.Duration
	resetTTL time.Duration
	resetURL string
	cost     int

	now   func() time.Time
	newID func() string
}

var _ Provider = (*Service)(nil)

func NewService(accounts store.Accounts, m mailer.Mailer, opts Options, log logger.Logger) *Service {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		accounts: accounts,
		mail:     m,
		log:      log,
		secret:   []byte(opts.Secret),
		tokenTTL: opts.TokenTTL,
		resetTTL: opts.ResetTTL,
		resetURL: opts.ResetURL,
		cost:     cost,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SignUp creates the account and signs it in
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (Result, error) {
	email = domain.NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return Result{}, errInvalidEmail
	}
	if len(password) < minPasswordLength {
		return Result{}, errWeakPassword
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Result{}, fmt.Errorf("failed to hash password: %w", err)
	}

	acc := domain.Account{
		ID:           s.newID(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.accounts.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return Result{}, errEmailTaken
		}
		return Result{}, err
	}

	s.log.Info("account created", logger.String("user_id", acc.ID))
	return s.issue(acc)
}

// SignIn checks the password and returns a fresh session token
func (s *Service) SignIn(ctx context.Context, email, password string) (Result, error) {
	acc, err := s.accounts.AccountByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return Result{}, errBadCredentials
	}
	if err != nil {
		return Result{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return Result{}, errBadCredentials
	}
	return s.issue(acc)
}

func (s *Service) issue(acc domain.Account) (Result, error) {
	now := s.now()
	c := claims{
		Email: acc.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.newID(),
			Subject:   acc.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return Result{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return Result{Token: token, User: userOf(acc)}, nil
}

// Verify parses a bearer token and rejects revoked ones
func (s *Service) Verify(ctx context.Context, token string) (Session, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || c.Subject == "" || c.ID == "" {
		return Session{}, errSessionInvalid
	}

	revoked, err := s.accounts.IsTokenRevoked(ctx, c.ID)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, errSessionInvalid
	}

	return Session{
		UserID:    c.Subject,
		Email:     c.Email,
		TokenID:   c.ID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// SignOut revokes the session's token until it would have expired
func (s *Service) SignOut(ctx context.Context, sess Session) error {
	return s.accounts.RevokeToken(ctx, sess.TokenID, sess.ExpiresAt)
}

// SendPasswordReset stores a single-use token and mails its link
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	acc, err := s.accounts.AccountByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return errUnknownEmail
	}
	if err != nil {
		return err
	}

	token := strings.ReplaceAll(s.newID()+s.newID(), "-", "")
	if err := s.accounts.PutResetToken(ctx, token, acc.ID, s.now().Add(s.resetTTL)); err != nil {
		return err
	}

	link := s.resetURL + "?token=" + url.QueryEscape(token)
	if err := s.mail.SendPasswordReset(ctx, acc.Email, link); err != nil {
		return err
	}

	s.log.Info("password reset sent", logger.String("user_id", acc.ID))
	return nil
}

// ConfirmPasswordReset consumes the token and sets the new password
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	if len(password) < minPasswordLength {
		return errWeakPassword
	}

	userID, err := s.accounts.ConsumeResetToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return errResetInvalid
	}
	if err != nil {
		return err
	}

	acc, err := s.accounts.AccountByID(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	acc.PasswordHash = string(hash)
	return s.accounts.UpdateAccount(ctx, acc)
}

// UpdateProfile applies the set fields of upd
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (User, error) {
	acc, err := s.accounts.AccountByID(ctx, userID)
	if err != nil {
		return User{}, err
	}

	if upd.DisplayName != nil {
		name := strings.TrimSpace(*upd.DisplayName)
		if name == "" {
			return User{}, newError(domain.ErrInvalid, "Update failed", "Display name cannot be empty.")
		}
		acc.DisplayName = name
	}
	if upd.PhotoURL != nil {
		acc.PhotoURL = strings.TrimSpace(*upd.PhotoURL)
	}

	if err := s.accounts.UpdateAccount(ctx, acc); err != nil {
		return User{}, err
	}
	return userOf(acc), nil
}

// Profile returns the account's public fields
func (s *Service) Profile(ctx context.Context, userID string) (User, error) {
	acc, err := s.accounts.AccountByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	return userOf(acc), nil
}
