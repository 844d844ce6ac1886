package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/utils"
)

// ErrBadCredentials covers unknown usernames and wrong passwords
// alike so login failures do not leak which part was wrong.
var ErrBadCredentials = errors.New("invalid username or password")

// ErrRoleMismatch is returned when the asserted login role does not
// match the account's stored role.
var ErrRoleMismatch = errors.New("role does not match this account")

// ErrNotWhitelisted is returned when the submitted id and name have no
// exact match in the roster for the requested role.
var ErrNotWhitelisted = errors.New("id and name do not match the roster")

// UserStore is the account surface.  Implemented by
// repository.UserRepo.
type UserStore interface {
	CreateWithProfile(ctx context.Context, p repository.RegisterParams) (uint64, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
}

// ProfileStore resolves role profiles.  Implemented by
// repository.ProfileRepo.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID uint64) (model.Profile, error)
	ExternalIDTaken(ctx context.Context, externalID string, role model.Role) (bool, error)
}

// WhitelistStore checks registrations against the roster.
// Implemented by repository.WhitelistRepo.
type WhitelistStore interface {
	Find(ctx context.Context, role model.Role, externalID, name string) (model.WhitelistEntry, error)
}

// IdentityService implements registration and login policy on top of
// the user, profile and whitelist stores.
type IdentityService struct {
	users      UserStore
	profiles   ProfileStore
	whitelist  WhitelistStore
	log        zerolog.Logger
	bcryptCost int
}

func NewIdentityService(users UserStore, profiles ProfileStore, whitelist WhitelistStore, log zerolog.Logger, bcryptCost int) *IdentityService {
	return &IdentityService{
		users:      users,
		profiles:   profiles,
		whitelist:  whitelist,
		log:        log.With().Str("component", "identity").Logger(),
		bcryptCost: bcryptCost,
	}
}

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	Role       string
	Username   string
	Email      string
	Password   string
	RealName   string
	ExternalID string
	Department string
}

// Register creates a student or teacher account after the roster
// check.  The submitted (external id, real name) pair must match a
// roster row exactly; when no department is submitted the roster's one
// is used.  Duplicate usernames and already-claimed ids are rejected.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (uint64, model.Role, error) {
	role, err := model.ParseRole(in.Role)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if !role.Registrable() {
		return 0, "", fmt.Errorf("%w: role %q cannot self-register", ErrInvalidInput, role)
	}
	if in.Username == "" || in.Password == "" || in.RealName == "" || in.ExternalID == "" {
		return 0, "", fmt.Errorf("%w: missing required registration fields", ErrInvalidInput)
	}

	entry, err := s.whitelist.Find(ctx, role, in.ExternalID, in.RealName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, "", ErrNotWhitelisted
		}
		return 0, "", err
	}
	department := in.Department
	if department == "" {
		department = entry.Department
	}

	taken, err := s.profiles.ExternalIDTaken(ctx, in.ExternalID, role)
	if err != nil {
		return 0, "", err
	}
	if taken {
		return 0, "", fmt.Errorf("%w: this id is already registered", repository.ErrDuplicate)
	}

	userID, err := s.users.CreateWithProfile(ctx, repository.RegisterParams{
		Username:   in.Username,
		Email:      in.Email,
		RealName:   in.RealName,
		Password:   in.Password,
		BcryptCost: s.bcryptCost,
		Role:       role,
		ExternalID: in.ExternalID,
		Department: department,
	})
	if err != nil {
		return 0, "", err
	}

	s.log.Info().Uint64("user_id", userID).Str("role", string(role)).Msg("account registered")
	return userID, role, nil
}

// Login authenticates a user and enforces the asserted role.  The
// role check runs only after the password is verified so the error
// never reveals whether the credentials were valid for another role.
// Admin accounts may log in through any role tab.
func (s *IdentityService) Login(ctx context.Context, username, password, assertedRole string) (model.User, model.Profile, error) {
	role, err := model.ParseRole(assertedRole)
	if err != nil {
		return model.User{}, model.Profile{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, model.Profile{}, ErrBadCredentials
		}
		return model.User{}, model.Profile{}, err
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return model.User{}, model.Profile{}, ErrBadCredentials
	}
	if !user.IsActive {
		return model.User{}, model.Profile{}, ErrBadCredentials
	}

	profile, err := s.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		return model.User{}, model.Profile{}, err
	}
	if profile.Role != role && profile.Role != model.RoleAdmin {
		return model.User{}, model.Profile{}, fmt.Errorf("%w: this is not a %s account", ErrRoleMismatch, role)
	}
	return user, profile, nil
}
