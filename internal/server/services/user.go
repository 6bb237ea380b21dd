package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/synscript/synscript/internal/common"
	"github.com/synscript/synscript/internal/dbx"
	"github.com/synscript/synscript/internal/logging"
	"github.com/synscript/synscript/internal/server/auth"
	"github.com/synscript/synscript/internal/server/config"
	"github.com/synscript/synscript/internal/server/models"
	"github.com/synscript/synscript/internal/server/repositories/repomanager"
)

const minPasswordLength = 8

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SignInResult is what Register and Login hand back: the account, its
// tokens and the vaults joined through invite reconciliation during this
// sign-in.
type SignInResult struct {
	User             *models.User
	Tokens           *TokenPair
	AcceptedVaultIDs []string
}

// inviteReconciler folds pending invites into memberships for a signed-in
// account.
type inviteReconciler interface {
	AcceptPending(ctx context.Context, userID, email string) ([]string, error)
}

// UserService provides authentication-related operations:
// - Register: create accounts and mint tokens
// - Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
//
// Both Register and Login reconcile pending invites, so a freshly invited
// user sees the shared vault on first sign-in.
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	invites                      inviteReconciler
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, invites inviteReconciler, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		invites:                      invites,
		logger:                       logger.With("module", "users"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a new account and returns its first token pair.
// The email must look like an address and the password must meet the
// minimum length; violations map to common.ErrValidation. A duplicate
// email surfaces as common.ErrConflict from the repository.
func (s *UserService) Register(ctx context.Context, email, password string) (*SignInResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", common.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	accepted := s.reconcileInvites(ctx, user)

	pair, err := s.generateTokenPair(ctx, user, s.db)
	if err != nil {
		return nil, err
	}
	return &SignInResult{User: user, Tokens: pair, AcceptedVaultIDs: accepted}, nil
}

// Login verifies the credentials and, on success, returns a new TokenPair.
// An unknown email and a wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*SignInResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrUnauthorized
	}

	accepted := s.reconcileInvites(ctx, user)

	pair, err := s.generateTokenPair(ctx, user, s.db)
	if err != nil {
		return nil, err
	}
	return &SignInResult{User: user, Tokens: pair, AcceptedVaultIDs: accepted}, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}

	// A refresh is a session bootstrap too: pick up invites that arrived
	// while the session was idle.
	s.reconcileInvites(ctx, user)

	return pair, nil
}

// reconcileInvites is best-effort: a failure must not block sign-in.
func (s *UserService) reconcileInvites(ctx context.Context, user *models.User) []string {
	if s.invites == nil {
		return nil
	}
	accepted, err := s.invites.AcceptPending(ctx, user.ID, user.Email)
	if err != nil {
		s.logger.Error(ctx, "invite reconciliation failed", "user_id", user.ID, "error", err)
	}
	return accepted
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("generating access token: %w", err)
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generating refresh token: %w", err)
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
