package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/vrlink/vrlink-api/internal/domain/entity"
	repo "github.com/vrlink/vrlink-api/internal/domain/repository"
	"github.com/vrlink/vrlink-api/pkg/helpers"
)

var (
	// ErrEmailTaken is returned by Register when the email already exists.
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidCredentials covers both unknown email and wrong password;
	// callers cannot tell which.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers malformed, expired, tampered and superseded
	// refresh tokens; callers cannot tell which.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserNotFound is returned by profile operations on a vanished user.
	ErrUserNotFound = errors.New("user not found")
)

// Service orchestrates the credential lifecycle: registration, login,
// refresh rotation, logout, profile maintenance and pairing-code derivation.
//
// The only mutable state is the per-user refresh fingerprint in the
// repository. Per user it forms a two-state machine: LoggedOut (nil) and
// Active (fingerprint of the single valid refresh token). Login overwrites
// it, refresh swaps it via compare-and-swap, logout clears it.
type Service struct {
	Repo           repo.UserRepository
	JWT            *helpers.JWTManager
	LinkCodeSecret string
	Redis          *redis.Client
	Logger         *logrus.Logger

	// now is the clock used for link-code derivation; overridable in tests.
	now func() time.Time
}

func NewService(r repo.UserRepository, jwt *helpers.JWTManager, linkCodeSecret string, rdb *redis.Client, logger *logrus.Logger) *Service {
	return &Service{
		Repo:           r,
		JWT:            jwt,
		LinkCodeSecret: linkCodeSecret,
		Redis:          rdb,
		Logger:         logger,
		now:            time.Now,
	}
}

// TokenPair is the transient credential pair returned by Login and Refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int // access token lifetime in seconds
}

// fingerprint returns the stored form of a refresh token: a SHA-256 hex
// digest, so the store never holds a usable credential and rotation can be a
// SQL compare-and-swap on equal values.
func fingerprint(refreshToken string) string {
	sum := sha256.Sum256([]byte(refreshToken))
	return hex.EncodeToString(sum[:])
}

func profileKey(userID string) string {
	return "user:profile:" + userID
}

// Register creates a user with a hashed password and no active session.
// It does not log the user in.
func (s *Service) Register(ctx context.Context, email, password string, displayName *string) (*entity.Public, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Email: email, PasswordHash: hash, DisplayName: displayName}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	pub := u.Projection()
	return &pub, nil
}

// Login verifies the credentials, issues a fresh token pair and stores the
// new refresh fingerprint, invalidating whatever session existed before.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.Public, TokenPair, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, TokenPair{}, err
	}

	fp := fingerprint(pair.RefreshToken)
	if err := s.Repo.SetRefreshFingerprint(ctx, u.ID, &fp); err != nil {
		s.logError("store refresh fingerprint failed", err, u.ID)
		return nil, TokenPair{}, err
	}

	pub := u.Projection()
	return &pub, pair, nil
}

// Refresh rotates the refresh token: the presented token must verify under
// the refresh secret and its fingerprint must still be the stored one. The
// swap is a compare-and-swap, so a token that lost a concurrent race, was
// already rotated, or was cleared by logout is rejected identically.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}

	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, ErrInvalidToken
	}
	if u.RefreshFingerprint == nil {
		return TokenPair{}, ErrInvalidToken
	}

	presented := fingerprint(refreshToken)
	if presented != *u.RefreshFingerprint {
		return TokenPair{}, ErrInvalidToken
	}

	pair, err := s.issueTokens(u)
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.Repo.RotateRefreshFingerprint(ctx, u.ID, presented, fingerprint(pair.RefreshToken)); err != nil {
		if errors.Is(err, repo.ErrFingerprintMismatch) {
			return TokenPair{}, ErrInvalidToken
		}
		s.logError("rotate refresh fingerprint failed", err, u.ID)
		return TokenPair{}, err
	}
	return pair, nil
}

// Logout clears the refresh fingerprint. Calling it with no active session
// is not an error.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.Repo.SetRefreshFingerprint(ctx, userID, nil); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// GetProfile returns the public projection, served from the redis cache when
// warm. The cache only ever holds the projection; credential state stays in
// postgres.
func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.Public, error) {
	if s.Redis != nil {
		var cached entity.Public
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, profileKey(userID), &cached); err == nil && ok {
			return &cached, nil
		}
	}

	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	pub := u.Projection()

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, profileKey(userID), pub, s.JWT.AccessTTL); err != nil {
			s.logError("profile cache write failed", err, userID)
		}
	}
	return &pub, nil
}

// UpdateProfileInput carries the patchable fields; nil means "leave as is".
type UpdateProfileInput struct {
	Email       *string
	Password    *string
	DisplayName *string
}

// UpdateProfile patches the user row. A password change re-hashes but does
// not clear the refresh fingerprint: existing sessions stay valid.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.Public, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}

	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.DisplayName != nil {
		u.DisplayName = in.DisplayName
	}
	if in.Password != nil {
		hash, err := helpers.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repo.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.invalidateProfile(ctx, userID)

	pub := u.Projection()
	return &pub, nil
}

// DeleteProfile removes the user row and the cached projection.
func (s *Service) DeleteProfile(ctx context.Context, userID string) error {
	if err := s.Repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.invalidateProfile(ctx, userID)
	return nil
}

// GetLinkCode derives the current pairing code for the user. Nothing is
// stored: any holder of the secret reproduces the same code within the same
// 60-second window.
func (s *Service) GetLinkCode(userID string) helpers.LinkCode {
	return helpers.DeriveLinkCode(s.LinkCodeSecret, userID, s.now())
}

func (s *Service) issueTokens(u *entity.User) (TokenPair, error) {
	access, _, err := s.JWT.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		s.logError("generate access token failed", err, u.ID)
		return TokenPair{}, err
	}
	refresh, _, err := s.JWT.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		s.logError("generate refresh token failed", err, u.ID)
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.JWT.AccessTTL.Seconds()),
	}, nil
}

func (s *Service) invalidateProfile(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, profileKey(userID)); err != nil {
		s.logError("profile cache invalidation failed", err, userID)
	}
}

func (s *Service) logError(msg string, err error, userID string) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithField("user_id", userID).Error(msg)
}
