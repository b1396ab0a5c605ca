package users

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/productmanage/internal/shared"
)

type memoryRepo struct {
	creds  map[int64]Credentials
	nextID int64
}

func newMemoryRepo() *memoryRepo { return &memoryRepo{creds: map[int64]Credentials{}} }

func (m *memoryRepo) List(context.Context, ListFilter) ([]User, error) {
	var out []User
	for _, c := range m.creds {
		out = append(out, c.User)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (User, error) {
	c, ok := m.creds[id]
	if !ok {
		return User{}, &shared.NotFoundError{Entity: "user", ID: id}
	}
	return c.User, nil
}

func (m *memoryRepo) FindByUsername(_ context.Context, username string) (Credentials, error) {
	for _, c := range m.creds {
		if c.Username == username {
			return c, nil
		}
	}
	return Credentials{}, &shared.NotFoundError{Entity: "user", ID: username}
}

func (m *memoryRepo) Create(_ context.Context, input CreateInput, hash string) (User, error) {
	if _, err := m.FindByUsername(context.Background(), input.Username); err == nil {
		return User{}, &shared.DuplicateError{Entity: "user", Field: "username", Value: input.Username}
	}
	if input.Role != shared.RoleAdmin && input.Role != shared.RoleAccountant && input.Role != shared.RoleWarehouse {
		return User{}, &shared.NotFoundError{Entity: "role", ID: input.Role}
	}
	m.nextID++
	u := User{ID: m.nextID, Username: input.Username, FullName: input.FullName, Role: input.Role, IsActive: true, CreatedAt: time.Now()}
	m.creds[u.ID] = Credentials{User: u, PasswordHash: hash}
	return u, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, input UpdateInput) error {
	c, ok := m.creds[id]
	if !ok {
		return &shared.NotFoundError{Entity: "user", ID: id}
	}
	c.FullName, c.Role = input.FullName, input.Role
	m.creds[id] = c
	return nil
}

func (m *memoryRepo) SetActive(_ context.Context, id int64, active bool) error {
	c, ok := m.creds[id]
	if !ok {
		return &shared.NotFoundError{Entity: "user", ID: id}
	}
	c.IsActive = active
	m.creds[id] = c
	return nil
}

func (m *memoryRepo) SetPassword(_ context.Context, id int64, hash string) error {
	c, ok := m.creds[id]
	if !ok {
		return &shared.NotFoundError{Entity: "user", ID: id}
	}
	c.PasswordHash = hash
	m.creds[id] = c
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	delete(m.creds, id)
	return nil
}

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	svc.cost = bcrypt.MinCost
	return svc, repo
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, repo := newTestService()
	u, err := svc.Register(context.Background(), CreateInput{
		Username: " anna ", Password: "secret1", FullName: "Anna K", Role: "Accountant",
	})
	require.NoError(t, err)
	require.Equal(t, "anna", u.Username)
	require.Equal(t, shared.RoleAccountant, u.Role)

	stored := repo.creds[u.ID].PasswordHash
	require.NotEqual(t, "secret1", stored)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("secret1")))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, CreateInput{Username: "ab", Password: "123", Role: "admin"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Register(ctx, CreateInput{Username: "longpass", Password: strings.Repeat("x", 100), Role: "admin"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Register(ctx, CreateInput{Username: "ghost", Password: "secret1", Role: "auditor"})
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Register(ctx, CreateInput{Username: "boris", Password: "secret1", Role: "warehouse"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, CreateInput{Username: "boris", Password: "secret2", Role: "warehouse"})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	u, err := svc.Register(ctx, CreateInput{Username: "vera", Password: "secret1", Role: "warehouse"})
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "vera", "secret1")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "vera", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "secret1")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	require.NoError(t, svc.SetActive(ctx, u.ID, false))
	_, err = svc.Authenticate(ctx, "vera", "secret1")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	u, err := svc.Register(ctx, CreateInput{Username: "gleb", Password: "secret1", Role: "admin"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangePassword(ctx, u.ID, PasswordInput{Password: "x"}), shared.ErrValidation)
	require.NoError(t, svc.ChangePassword(ctx, u.ID, PasswordInput{Password: "newsecret"}))

	_, err = svc.Authenticate(ctx, "gleb", "secret1")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "gleb", "newsecret")
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangePassword(ctx, 99, PasswordInput{Password: "newsecret"}), shared.ErrNotFound)
}

type recordingRevoker struct {
	revoked []int64
	err     error
}

func (r *recordingRevoker) RevokeUser(_ context.Context, userID int64) error {
	r.revoked = append(r.revoked, userID)
	return r.err
}

func TestAccountChangesRevokeSessions(t *testing.T) {
	svc, _ := newTestService()
	revoker := &recordingRevoker{}
	svc.UseSessionRevoker(revoker)
	ctx := context.Background()

	u, err := svc.Register(ctx, CreateInput{Username: "dora", Password: "secret1", Role: "warehouse"})
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(ctx, u.ID, true))
	require.NoError(t, svc.Update(ctx, u.ID, UpdateInput{FullName: "Dora M", Role: "accountant"}))
	require.Empty(t, revoker.revoked)

	require.NoError(t, svc.SetActive(ctx, u.ID, false))
	require.NoError(t, svc.ChangePassword(ctx, u.ID, PasswordInput{Password: "newsecret"}))
	require.NoError(t, svc.Delete(ctx, u.ID))
	require.Equal(t, []int64{u.ID, u.ID, u.ID}, revoker.revoked)

	require.ErrorIs(t, svc.SetActive(ctx, 99, false), shared.ErrNotFound)
	require.Len(t, revoker.revoked, 3)
}

func TestRevocationFailureDoesNotFailTheChange(t *testing.T) {
	svc, repo := newTestService()
	svc.UseSessionRevoker(&recordingRevoker{err: shared.ErrInfrastructure})
	ctx := context.Background()

	u, err := svc.Register(ctx, CreateInput{Username: "emil", Password: "secret1", Role: "admin"})
	require.NoError(t, err)
	require.NoError(t, svc.SetActive(ctx, u.ID, false))
	require.False(t, repo.creds[u.ID].IsActive)
}
