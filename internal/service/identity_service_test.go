package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

type fakeUserStore struct {
	nextID   uint64
	byName   map[string]model.User
	profiles map[uint64]model.Profile
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byName: map[string]model.User{}, profiles: map[uint64]model.Profile{}}
}

func (f *fakeUserStore) CreateWithProfile(_ context.Context, p repository.RegisterParams) (uint64, error) {
	if _, ok := f.byName[p.Username]; ok {
		return 0, repository.ErrDuplicate
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.MinCost)
	if err != nil {
		return 0, err
	}
	f.nextID++
	f.byName[p.Username] = model.User{
		ID:           f.nextID,
		Username:     p.Username,
		Email:        p.Email,
		RealName:     p.RealName,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	f.profiles[f.nextID] = model.Profile{
		UserID:     f.nextID,
		Role:       p.Role,
		ExternalID: p.ExternalID,
		Department: p.Department,
	}
	return f.nextID, nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByUserID(_ context.Context, userID uint64) (model.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return model.Profile{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeUserStore) ExternalIDTaken(_ context.Context, externalID string, role model.Role) (bool, error) {
	for _, p := range f.profiles {
		if p.ExternalID == externalID && p.Role == role {
			return true, nil
		}
	}
	return false, nil
}

type fakeWhitelist struct{ entries []model.WhitelistEntry }

func (f *fakeWhitelist) Find(_ context.Context, role model.Role, externalID, name string) (model.WhitelistEntry, error) {
	for _, e := range f.entries {
		if e.ExternalID == externalID && e.Name == name {
			return e, nil
		}
	}
	return model.WhitelistEntry{}, repository.ErrNotFound
}

func newIdentity(t *testing.T) (*IdentityService, *fakeUserStore) {
	t.Helper()
	store := newFakeUserStore()
	roster := &fakeWhitelist{entries: []model.WhitelistEntry{
		{Name: "Alice Zhang", ExternalID: "S2024001", Department: "Physics"},
		{Name: "Bob Li", ExternalID: "S2024002"},
	}}
	return NewIdentityService(store, store, roster, zerolog.Nop(), bcrypt.MinCost), store
}

func registerInput() RegisterInput {
	return RegisterInput{
		Role:       "student",
		Username:   "alice",
		Password:   "secret123",
		RealName:   "Alice Zhang",
		ExternalID: "S2024001",
	}
}

func TestRegisterHappyPath(t *testing.T) {
	svc, store := newIdentity(t)

	userID, role, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, role)

	profile := store.profiles[userID]
	assert.Equal(t, "S2024001", profile.ExternalID)
	// department backfilled from the roster
	assert.Equal(t, "Physics", profile.Department)
}

func TestRegisterKeepsSubmittedDepartmentWhenRosterHasNone(t *testing.T) {
	svc, store := newIdentity(t)

	in := registerInput()
	in.Username = "bob"
	in.RealName = "Bob Li"
	in.ExternalID = "S2024002"
	in.Department = "History"
	userID, _, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "History", store.profiles[userID].Department)
}

func TestRegisterSubmittedDepartmentWinsOverRoster(t *testing.T) {
	svc, store := newIdentity(t)

	in := registerInput()
	in.Department = "Chemistry"
	userID, _, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	// the roster lists Physics for this id, but the submitted value wins
	assert.Equal(t, "Chemistry", store.profiles[userID].Department)
}

func TestRegisterRejectsRosterMismatch(t *testing.T) {
	svc, _ := newIdentity(t)

	in := registerInput()
	in.RealName = "Someone Else"
	_, _, err := svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrNotWhitelisted)

	in = registerInput()
	in.ExternalID = "S9999999"
	_, _, err = svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrNotWhitelisted)
}

func TestRegisterRejectsDuplicateIdentity(t *testing.T) {
	svc, _ := newIdentity(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	// same roster identity, different username
	in := registerInput()
	in.Username = "alice2"
	_, _, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestRegisterRejectsBadRoles(t *testing.T) {
	svc, _ := newIdentity(t)
	ctx := context.Background()

	in := registerInput()
	in.Role = "admin"
	_, _, err := svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in.Role = "wizard"
	_, _, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginRoleGate(t *testing.T) {
	svc, _ := newIdentity(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	user, profile, err := svc.Login(ctx, "alice", "secret123", "student")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, model.RoleStudent, profile.Role)

	// wrong asserted role fails after the credential check
	_, _, err = svc.Login(ctx, "alice", "secret123", "teacher")
	assert.ErrorIs(t, err, ErrRoleMismatch)

	// wrong password never reaches the role gate
	_, _, err = svc.Login(ctx, "alice", "wrong", "teacher")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, _, err = svc.Login(ctx, "nobody", "secret123", "student")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestLoginAdminMatchesAnyTab(t *testing.T) {
	svc, store := newIdentity(t)
	ctx := context.Background()

	userID, err := store.CreateWithProfile(ctx, repository.RegisterParams{
		Username: "root", Password: "rootpass", Role: model.RoleAdmin, ExternalID: "A1",
	})
	require.NoError(t, err)

	for _, tab := range []string{"student", "teacher", "admin"} {
		user, profile, err := svc.Login(ctx, "root", "rootpass", tab)
		require.NoError(t, err, "tab %s", tab)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, model.RoleAdmin, profile.Role)
	}
}
