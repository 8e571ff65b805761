package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/naturlife/storefront/internal/apperr"
	"github.com/naturlife/storefront/internal/domain/job"
	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/naturlife/storefront/internal/jobs"
	"github.com/naturlife/storefront/internal/observability"
	"github.com/naturlife/storefront/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, in user.NewUser) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	UpdateRole(ctx context.Context, id string, role user.Role) error
	Delete(ctx context.Context, id string) error
}

type TokenIssuer interface {
	Issue(userID, email string, role user.Role) (string, error)
}

type JobEnqueuer interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
}

const minPasswordLen = 6

// AuthResult is what login and registration hand back to the client.
type AuthResult struct {
	Token string      `json:"token"`
	User  user.Public `json:"user"`
}

var (
	errBadCredentials = apperr.Unauthenticated("invalid_credentials", "Invalid email or password.")
	validate          = validator.New()
)

// Compared against when the email is unknown so both failure paths cost one bcrypt run.
var dummyHash = security.MustHashPassword("not-a-real-password")

type Accounts struct {
	users  UserStore
	tokens TokenIssuer
	jobs   JobEnqueuer
	log    *slog.Logger
	prom   *observability.Prom
}

func NewAccounts(users UserStore, tokens TokenIssuer, jobs JobEnqueuer, log *slog.Logger, prom *observability.Prom) *Accounts {
	if log == nil {
		log = slog.Default()
	}
	return &Accounts{users: users, tokens: tokens, jobs: jobs, log: log, prom: prom}
}

func (s *Accounts) Register(ctx context.Context, req user.RegisterRequest) (AuthResult, error) {
	email := user.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)

	if err := validate.Var(email, "required,email"); err != nil {
		return AuthResult{}, apperr.Validation("invalid_email", "A valid email is required.")
	}
	if len(req.Password) < minPasswordLen {
		return AuthResult{}, apperr.Validation("weak_password", "Password must be at least 6 characters.")
	}
	if name == "" {
		return AuthResult{}, apperr.Validation("invalid_name", "Name is required.")
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}

	u, err := s.users.Create(ctx, user.NewUser{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         user.RoleUser,
		Phone:        user.OptionalString(req.Phone),
		Address:      user.OptionalString(req.Address),
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return AuthResult{}, apperr.Conflict("email_taken", "Email already registered.")
		}
		return AuthResult{}, apperr.Internal(err)
	}

	s.enqueueWelcome(ctx, u)

	return s.issue(u)
}

func (s *Accounts) Login(ctx context.Context, req user.LoginRequest) (AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return AuthResult{}, apperr.Internal(err)
		}
		security.PasswordMatches(dummyHash, req.Password)
		s.prom.Login("failed")
		return AuthResult{}, errBadCredentials
	}

	if !security.PasswordMatches(u.PasswordHash, req.Password) {
		s.prom.Login("failed")
		return AuthResult{}, errBadCredentials
	}

	s.prom.Login("ok")
	return s.issue(u)
}

func (s *Accounts) Me(ctx context.Context, userID string) (user.Public, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Public{}, apperr.NotFound("user_not_found", "User not found.")
		}
		return user.Public{}, apperr.Internal(err)
	}
	return u.Public(), nil
}

func (s *Accounts) issue(u user.User) (AuthResult, error) {
	tok, err := s.tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}
	return AuthResult{Token: tok, User: u.Public()}, nil
}

// enqueueWelcome is best effort: a lost welcome message never fails a registration.
func (s *Accounts) enqueueWelcome(ctx context.Context, u user.User) {
	if s.jobs == nil {
		return
	}

	payload := jobs.WelcomeEmailPayload{UserID: u.ID, Email: u.Email, Name: u.Name}
	req, err := jobs.NewCreateRequest(jobs.JobWelcomeEmail, payload, payload.IdempotencyKey())
	if err == nil {
		uid := u.ID
		req.UserID = &uid
		_, err = s.jobs.Create(ctx, req)
	}
	if err != nil {
		s.log.WarnContext(ctx, "welcome job not enqueued", "user_id", u.ID, "err", err)
	}
}
