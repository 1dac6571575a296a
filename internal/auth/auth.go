package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	jwtlib "finflow/internal/lib/jwt"
	sl "finflow/internal/lib/logger"
	"finflow/internal/lib/random"
	"finflow/internal/models"
	"finflow/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserInactive       = errors.New("user is inactive or missing")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type UserStore interface {
	SaveUser(ctx context.Context, username, email string, passHash []byte, firstName, lastName *string) (models.User, error)
	UserExists(ctx context.Context, username, email string) (bool, error)
	UserByLogin(ctx context.Context, login string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
	UpdatePassword(ctx context.Context, userID int64, passHash []byte) error
}

type ResetTokenStore interface {
	SaveResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, token string, passHash []byte) (int64, error)
}

type Publisher interface {
	SendMessage(ctx context.Context, msg models.EmailMessage) error
}

type Auth struct {
	log         *slog.Logger
	users       UserStore
	resetTokens ResetTokenStore
	pub         Publisher
	jwtSecret   string
	accessTTL   time.Duration
	resetTTL    time.Duration
	frontendURL string
}

func New(
	log *slog.Logger,
	users UserStore,
	resetTokens ResetTokenStore,
	pub Publisher,
	jwtSecret string,
	accessTTL, resetTTL time.Duration,
	frontendURL string,
) *Auth {
	return &Auth{
		log:         log,
		users:       users,
		resetTokens: resetTokens,
		pub:         pub,
		jwtSecret:   jwtSecret,
		accessTTL:   accessTTL,
		resetTTL:    resetTTL,
		frontendURL: frontendURL,
	}
}

// Register creates a user and issues a bearer token for immediate login.
// The pre-insert lookup gives a friendly conflict answer; the unique
// constraints in the database remain the authoritative guard.
func (a *Auth) Register(
	ctx context.Context,
	username, email, pass string,
	firstName, lastName *string,
) (models.User, string, error) {
	const op = "auth.Register"

	log := a.log.With(slog.String("op", op))

	taken, err := a.users.UserExists(ctx, username, email)
	if err != nil {
		log.Error("failed to check existing users", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return models.User{}, "", ErrUserExists
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	user, err := a.users.SaveUser(ctx, username, email, passHash, firstName, lastName)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")
			return models.User{}, "", ErrUserExists
		}

		log.Error("failed to save user", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := jwtlib.NewToken(user, a.jwtSecret, a.accessTTL)
	if err != nil {
		log.Error("failed to generate access token", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Int64("uid", user.ID))

	return user, token, nil
}

// Login checks the credentials and issues a bearer token. An unknown
// login and a wrong password collapse to the same error value so the
// response cannot be used for account enumeration.
func (a *Auth) Login(ctx context.Context, login, pass string) (models.User, string, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.users.UserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return models.User{}, "", ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(pass)); err != nil {
		log.Info("invalid credentials")
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := jwtlib.NewToken(user, a.jwtSecret, a.accessTTL)
	if err != nil {
		log.Error("failed to generate access token", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in", slog.Int64("uid", user.ID))

	return user, token, nil
}

// ForgotPassword creates a single-use reset token for a known account
// and queues the reset email. An unknown email returns nil so the
// handler answers identically either way.
func (a *Auth) ForgotPassword(ctx context.Context, email string) error {
	const op = "auth.ForgotPassword"

	log := a.log.With(slog.String("op", op))

	user, err := a.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("reset requested for unknown email")
			return nil
		}

		log.Error("failed to get user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	token, err := random.NewResetToken(32)
	if err != nil {
		log.Error("failed to generate reset token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	expiresAt := time.Now().Add(a.resetTTL)

	if err := a.resetTokens.SaveResetToken(ctx, user.ID, token, expiresAt); err != nil {
		log.Error("failed to save reset token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := models.EmailMessage{
		Email:   user.Email,
		Link:    fmt.Sprintf("%s/reset-password?token=%s", a.frontendURL, token),
		Subject: "FinFlow - Password Reset",
	}

	if err := a.pub.SendMessage(ctx, msg); err != nil {
		log.Error("failed to queue reset email", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("reset email queued", slog.Int64("uid", user.ID))

	return nil
}

// ResetPassword redeems a reset token exactly once. Consuming the token
// and changing the password happen in one storage transaction.
func (a *Auth) ResetPassword(ctx context.Context, token, newPass string) error {
	const op = "auth.ResetPassword"

	log := a.log.With(slog.String("op", op))

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPass), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	userID, err := a.resetTokens.ConsumeResetToken(ctx, token, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrResetTokenNotFound) {
			log.Warn("reset token not found, used or expired")
			return ErrInvalidResetToken
		}

		log.Error("failed to consume reset token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("password reset", slog.Int64("uid", userID))

	return nil
}

// ChangePassword verifies the current password before storing a new one.
func (a *Auth) ChangePassword(ctx context.Context, userID int64, currentPass, newPass string) error {
	const op = "auth.ChangePassword"

	log := a.log.With(slog.String("op", op))

	user, err := a.users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUserInactive
		}

		log.Error("failed to get user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(currentPass)); err != nil {
		return ErrWrongPassword
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPass), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.users.UpdatePassword(ctx, userID, passHash); err != nil {
		log.Error("failed to update password", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("password changed", slog.Int64("uid", userID))

	return nil
}

// Authenticate verifies a bearer token and re-checks the subject against
// the store: a token for a deactivated or deleted account is rejected
// even though its signature is still valid.
func (a *Auth) Authenticate(ctx context.Context, tokenStr string) (models.User, error) {
	const op = "auth.Authenticate"

	claims, err := jwtlib.ParseToken(tokenStr, a.jwtSecret)
	if err != nil {
		return models.User{}, err
	}

	user, err := a.users.UserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, ErrUserInactive
		}

		a.log.Error("failed to load token subject", slog.String("op", op), sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsActive {
		return models.User{}, ErrUserInactive
	}

	return user, nil
}
