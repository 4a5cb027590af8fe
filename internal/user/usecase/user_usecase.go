// Package usecase implements the user business logic and orchestrates user domain operations.
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	"github.com/allisson/sessions/internal/config"
	"github.com/allisson/sessions/internal/database"
	apperrors "github.com/allisson/sessions/internal/errors"
	"github.com/allisson/sessions/internal/user/domain"
	appValidation "github.com/allisson/sessions/internal/validation"
)

// dummyPassword is hashed once at startup so unknown emails cost one Argon2id verification.
const dummyPassword = "session-dummy-password"

// RegisterUserInput contains the input data for user registration
type RegisterUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordInput contains the input data for a password change
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UseCase defines the interface for user business logic operations
type UseCase interface {
	RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// VerifyCredentials checks an email/password pair. Unknown emails, wrong
	// passwords, disabled and locked accounts all satisfy
	// errors.Is(err, ErrInvalidCredentials); a locked account additionally
	// matches ErrUserLocked.
	VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error)

	// ChangePassword replaces the password and revokes every session of the user.
	ChangePassword(ctx context.Context, id uuid.UUID, input ChangePasswordInput) error

	// DeactivateUser disables the account and revokes every session of the user.
	DeactivateUser(ctx context.Context, id uuid.UUID) error

	// DeleteUser revokes every session of the user and removes the account.
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// UserRepository interface defines user repository operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, password string) error
	UpdateLoginState(ctx context.Context, id uuid.UUID, failedAttempts int, lockedUntil *time.Time) error
	RecordFailedLogin(ctx context.Context, id uuid.UUID, maxAttempts int, lockedUntil time.Time) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionRevoker revokes every session token of a user.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, userID uuid.UUID, reason authDomain.RevocationReason) error
}

// UserUseCase handles user-related business logic
type UserUseCase struct {
	txManager      database.TxManager
	userRepo       UserRepository
	revoker        SessionRevoker
	passwordHasher *pwdhash.PasswordHasher
	dummyHash      string
	maxAttempts    int
	lockout        time.Duration
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(
	cfg *config.Config,
	txManager database.TxManager,
	userRepo UserRepository,
	revoker SessionRevoker,
) (UseCase, error) {
	// Initialize password hasher with interactive policy for user passwords
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	dummyHash, err := hasher.Hash([]byte(dummyPassword))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash dummy password")
	}

	return &UserUseCase{
		txManager:      txManager,
		userRepo:       userRepo,
		revoker:        revoker,
		passwordHasher: hasher,
		dummyHash:      dummyHash,
		maxAttempts:    cfg.LockoutMaxAttempts,
		lockout:        cfg.LockoutDuration,
	}, nil
}

func passwordRules(field *string) *validation.FieldRules {
	return validation.Field(field,
		validation.Required.Error("password is required"),
		validation.Length(appValidation.MinPasswordLength, appValidation.MaxPasswordLength).
			Error("password must be between 8 and 128 characters"),
		appValidation.AccountPassword,
	)
}

// validateRegisterUserInput validates the registration input using jellydator/validation
func (uc *UserUseCase) validateRegisterUserInput(input RegisterUserInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		passwordRules(&input.Password),
	)
	return appValidation.WrapValidationError(err)
}

func (uc *UserUseCase) validateChangePasswordInput(input ChangePasswordInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.CurrentPassword,
			validation.Required.Error("current password is required"),
		),
		passwordRules(&input.NewPassword),
	)
	return appValidation.WrapValidationError(err)
}

// RegisterUser registers a new, active user
func (uc *UserUseCase) RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	// Validate input
	if err := uc.validateRegisterUserInput(input); err != nil {
		return nil, err
	}

	// Hash the password
	hashedPassword, err := uc.passwordHasher.Hash([]byte(input.Password))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	user := &domain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Name:     strings.TrimSpace(input.Name),
		Email:    normalizeEmail(input.Email),
		Password: hashedPassword,
		IsActive: true,
	}

	// Create user - repository will return domain errors
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (uc *UserUseCase) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
}

// GetUserByID retrieves a user by ID
func (uc *UserUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// VerifyCredentials checks the password and maintains the lockout counters.
func (uc *UserUseCase) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_, _ = uc.passwordHasher.Verify([]byte(password), uc.dummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// Exactly one hash verification per call, locked or not.
	valid := uc.comparePassword(password, user.Password)

	now := time.Now().UTC()
	if user.IsLocked(now) {
		return nil, domain.ErrUserLocked
	}

	if !valid {
		if err := uc.recordFailure(ctx, user, now); err != nil {
			return nil, err
		}
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		if err := uc.userRepo.UpdateLoginState(ctx, user.ID, 0, nil); err != nil {
			return nil, err
		}
		user.FailedAttempts = 0
		user.LockedUntil = nil
	}

	return user, nil
}

// recordFailure bumps the failed attempt counter in the database and starts a
// lockout window once the configured maximum is reached. A zero maximum
// disables lockout.
func (uc *UserUseCase) recordFailure(ctx context.Context, user *domain.User, now time.Time) error {
	if uc.maxAttempts <= 0 {
		return nil
	}
	return uc.userRepo.RecordFailedLogin(ctx, user.ID, uc.maxAttempts, now.Add(uc.lockout))
}

// ChangePassword verifies the current password, stores the new hash and
// revokes all sessions. The update and the revocation share one transaction.
func (uc *UserUseCase) ChangePassword(ctx context.Context, id uuid.UUID, input ChangePasswordInput) error {
	if err := uc.validateChangePasswordInput(input); err != nil {
		return err
	}

	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !uc.comparePassword(input.CurrentPassword, user.Password) {
		return domain.ErrInvalidCredentials
	}

	hashedPassword, err := uc.passwordHasher.Hash([]byte(input.NewPassword))
	if err != nil {
		return apperrors.Wrap(err, "failed to hash password")
	}

	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.userRepo.UpdatePassword(ctx, id, hashedPassword); err != nil {
			return err
		}
		return uc.revoker.RevokeAll(ctx, id, authDomain.ReasonPasswordChanged)
	})
}

// DeactivateUser disables the account and revokes all sessions.
func (uc *UserUseCase) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	if _, err := uc.userRepo.GetByID(ctx, id); err != nil {
		return err
	}

	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.userRepo.Deactivate(ctx, id); err != nil {
			return err
		}
		return uc.revoker.RevokeAll(ctx, id, authDomain.ReasonDeactivated)
	})
}

// DeleteUser revokes all sessions and removes the account.
func (uc *UserUseCase) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := uc.userRepo.GetByID(ctx, id); err != nil {
		return err
	}

	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.revoker.RevokeAll(ctx, id, authDomain.ReasonDeleted); err != nil {
			return err
		}
		return uc.userRepo.Delete(ctx, id)
	})
}

func (uc *UserUseCase) comparePassword(password, hash string) bool {
	ok, err := uc.passwordHasher.Verify([]byte(password), hash)
	if err != nil {
		return false
	}
	return ok
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
