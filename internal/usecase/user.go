package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/skynetfrank/user-service/internal/auth"
	"github.com/skynetfrank/user-service/internal/entity"
	"github.com/skynetfrank/user-service/internal/mailer"
	"github.com/skynetfrank/user-service/internal/repository"
	"github.com/skynetfrank/user-service/internal/validator"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyAttempts    = errors.New("too many sign-in attempts, try again later")
	ErrEmailTaken         = errors.New("email already in use")
	ErrProtectedUser      = errors.New("protected users cannot be deactivated")
	ErrSelfDeactivation   = errors.New("administrators cannot deactivate their own account")
	ErrInvalidID          = errors.New("invalid user id")
)

// maxLoginAttempts is the failure threshold before sign-in is throttled for
// the redis window.
const maxLoginAttempts = 5

// UserRepository is the persistence contract the lifecycle service depends
// on. The mongo implementation lives in internal/repository.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, userID primitive.ObjectID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetActiveByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Search(ctx context.Context, query string, skip, limit int64) ([]*entity.User, error)
	Count(ctx context.Context, query string) (int64, error)
	ListSellers(ctx context.Context) ([]*entity.Seller, error)
}

// LoginThrottle counts sign-in failures per email within a rolling window.
type LoginThrottle interface {
	FailedLoginAttempts(ctx context.Context, email string) (int64, error)
	RecordFailedLogin(ctx context.Context, email string) error
	ClearFailedLogins(ctx context.Context, email string) error
}

// RegisterInput carries the self-registration profile.
type RegisterInput struct {
	FirstName  string
	LastName   string
	NationalID string
	Email      string
	Password   string
	Phone      string
}

// ProfileUpdate uses pointers to distinguish an absent field (nil, leave
// unchanged) from an explicit empty value.
type ProfileUpdate struct {
	FirstName  *string
	LastName   *string
	NationalID *string
	Email      *string
	Phone      *string
	Password   *string
}

// AdminUpdate is the administrative edit. The flags are plain booleans: an
// absent flag in the request is coerced to false, matching the observed
// contract.
type AdminUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	IsAdmin   bool
	IsSeller  bool
	Password  *string
}

// UserPage is one page of an administrative listing.
type UserPage struct {
	Users []*entity.User
	Page  int64
	Pages int64
}

type UserUsecase struct {
	repo     UserRepository
	throttle LoginThrottle
	jwter    *auth.JWTer
	mailer   mailer.Mailer // nil when no mail driver is configured
	logger   *zap.Logger
}

func NewUserUsecase(repo UserRepository, throttle LoginThrottle, jwter *auth.JWTer, m mailer.Mailer, logger *zap.Logger) *UserUsecase {
	return &UserUsecase{
		repo:     repo,
		throttle: throttle,
		jwter:    jwter,
		mailer:   m,
		logger:   logger.Named("UserUsecase"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new active seller account and returns it with a fresh
// token. Uniqueness of email and cedula is enforced by the store's unique
// indexes; a losing concurrent writer surfaces here as a duplicate error.
func (u *UserUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, string, error) {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return nil, "", fmt.Errorf("%w: nombre, apellido, email and password are required", ErrValidation)
	}
	if in.NationalID != "" {
		if err := validator.NationalID(in.NationalID); err != nil {
			return nil, "", fmt.Errorf("%w: %s", ErrValidation, err)
		}
		in.NationalID = validator.FormatNationalID(in.NationalID)
	}
	if in.Phone != "" {
		if err := validator.Phone(in.Phone); err != nil {
			return nil, "", fmt.Errorf("%w: %s", ErrValidation, err)
		}
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	user := &entity.User{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		NationalID: in.NationalID,
		Email:      normalizeEmail(in.Email),
		Password:   hashed,
		Phone:      in.Phone,
		IsAdmin:    false,
		IsSeller:   true,
		IsActive:   true,
	}
	if _, err := u.repo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := u.jwter.Issue(user)
	if err != nil {
		return nil, "", err
	}

	if u.mailer != nil {
		go u.sendWelcome(user.Email, user.FirstName)
	}
	return user, token, nil
}

func (u *UserUsecase) sendWelcome(email, name string) {
	if err := u.mailer.SendWelcome(email, name); err != nil {
		u.logger.Warn("Failed to send welcome email", zap.String("email", email), zap.Error(err))
	}
}

// Login authenticates an active account. Every failure mode (unknown email,
// deactivated record, wrong password) collapses into the same generic
// ErrInvalidCredentials so the caller cannot tell which half failed.
func (u *UserUsecase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	if fails, err := u.throttle.FailedLoginAttempts(ctx, email); err != nil {
		u.logger.Warn("Login throttle unavailable, continuing", zap.Error(err))
	} else if fails >= maxLoginAttempts {
		return nil, "", ErrTooManyAttempts
	}

	user, err := u.repo.GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			u.recordFailure(ctx, email)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPassword(password, user.Password) {
		u.recordFailure(ctx, email)
		return nil, "", ErrInvalidCredentials
	}

	if err := u.throttle.ClearFailedLogins(ctx, email); err != nil {
		u.logger.Warn("Failed to clear login failures", zap.Error(err))
	}
	token, err := u.jwter.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (u *UserUsecase) recordFailure(ctx context.Context, email string) {
	if err := u.throttle.RecordFailedLogin(ctx, email); err != nil {
		u.logger.Warn("Failed to record login failure", zap.Error(err))
	}
}

// GetByID fetches a single record.
func (u *UserUsecase) GetByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return u.repo.GetByID(ctx, oid)
}

// UpdateProfile lets the authenticated actor edit their own record. Nil
// fields are left unchanged; an email change re-checks uniqueness; a
// non-empty password is rehashed. A fresh token is returned because name and
// email are token claims.
func (u *UserUsecase) UpdateProfile(ctx context.Context, actorID string, in ProfileUpdate) (*entity.User, string, error) {
	oid, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, "", ErrInvalidID
	}
	user, err := u.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, "", err
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.NationalID != nil {
		cedula := *in.NationalID
		if cedula != "" {
			if err := validator.NationalID(cedula); err != nil {
				return nil, "", fmt.Errorf("%w: %s", ErrValidation, err)
			}
			cedula = validator.FormatNationalID(cedula)
		}
		user.NationalID = cedula
	}
	if in.Phone != nil {
		phone := *in.Phone
		if phone != "" {
			if err := validator.Phone(phone); err != nil {
				return nil, "", fmt.Errorf("%w: %s", ErrValidation, err)
			}
		}
		user.Phone = phone
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != "" && email != user.Email {
			existing, err := u.repo.GetByEmail(ctx, email)
			if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
				return nil, "", err
			}
			if existing != nil && existing.ID != user.ID {
				return nil, "", ErrEmailTaken
			}
			user.Email = email
		}
	}
	if in.Password != nil && *in.Password != "" {
		hashed, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, "", err
		}
		user.Password = hashed
	}

	if err := u.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := u.jwter.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// AdminEdit updates any target record on behalf of an administrator. The
// admin and seller flags are always written with whatever the caller coerced
// them to; the password only changes when non-blank.
func (u *UserUsecase) AdminEdit(ctx context.Context, targetID string, in AdminUpdate) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return nil, ErrInvalidID
	}
	user, err := u.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Email != nil && *in.Email != "" {
		user.Email = normalizeEmail(*in.Email)
	}
	user.IsAdmin = in.IsAdmin
	user.IsSeller = in.IsSeller
	if in.Password != nil && strings.TrimSpace(*in.Password) != "" {
		hashed, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := u.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Deactivate soft-deletes the target record. Protected records and the
// acting administrator's own account are refused. Re-deactivating an already
// inactive record is a plain save.
func (u *UserUsecase) Deactivate(ctx context.Context, actorID, targetID string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return nil, ErrInvalidID
	}
	user, err := u.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if user.IsProtected {
		return nil, ErrProtectedUser
	}
	if actorID == user.ID.Hex() {
		return nil, ErrSelfDeactivation
	}

	user.IsActive = false
	if err := u.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	u.logger.Info("User deactivated", zap.String("userID", user.ID.Hex()), zap.String("adminID", actorID))
	return user, nil
}

// List returns one page of the administrative listing. The search matches
// active and inactive records alike.
func (u *UserUsecase) List(ctx context.Context, page, limit int64, search string) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	count, err := u.repo.Count(ctx, search)
	if err != nil {
		return nil, err
	}
	users, err := u.repo.Search(ctx, search, limit*(page-1), limit)
	if err != nil {
		return nil, err
	}
	return &UserPage{
		Users: users,
		Page:  page,
		Pages: int64(math.Ceil(float64(count) / float64(limit))),
	}, nil
}

// ListSellers returns the minimal seller projections, sorted by first name.
func (u *UserUsecase) ListSellers(ctx context.Context) ([]*entity.Seller, error) {
	return u.repo.ListSellers(ctx)
}
