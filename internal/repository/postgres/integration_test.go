//go:build integration

package postgres_test

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/orgdesk/orgdesk-server/internal/model"
	repo "github.com/orgdesk/orgdesk-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "orgdesk_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/orgdesk_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func hashOf(s string) []byte {
	h := sha256.Sum256([]byte(s))
	return h[:]
}

func createUser(t *testing.T, ur *repo.UserRepository, email string) model.User {
	t.Helper()
	u, err := ur.Create(context.Background(), model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: []byte("$2a$10$fake"),
		Name:         "Test User",
		Role:         model.RoleMember,
	})
	require.NoError(t, err)
	return u
}

func TestRepositories_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	t.Run("user_repository", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		u := createUser(t, ur, "user@example.com")

		byEmail, err := ur.GetByEmail(ctx, "USER@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, byEmail.ID)

		byID, err := ur.GetByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.Email, byID.Email)

		_, err = ur.Create(ctx, model.User{
			ID:           uuid.New(),
			Email:        "user@example.com",
			PasswordHash: []byte("x"),
			Role:         model.RoleMember,
		})
		require.ErrorIs(t, err, model.ErrEmailTaken)

		require.NoError(t, ur.UpdatePasswordHash(ctx, u.ID, []byte("$2a$10$new")))
		updated, err := ur.GetByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, []byte("$2a$10$new"), updated.PasswordHash)
	})

	t.Run("refresh_token_rotation", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		rr := repo.NewRefreshTokenRepository(conn)
		owner := createUser(t, ur, "rotate@example.com")

		now := time.Now()
		old := model.RefreshToken{
			ID:        uuid.New(),
			UserID:    owner.ID,
			TokenHash: hashOf("raw-old"),
			IssuedAt:  now,
			ExpiresAt: now.Add(time.Hour),
		}
		require.NoError(t, rr.Create(ctx, old))

		replacement := model.RefreshToken{
			ID:        uuid.New(),
			UserID:    owner.ID,
			TokenHash: hashOf("raw-new"),
			IssuedAt:  now,
			ExpiresAt: now.Add(time.Hour),
		}
		require.NoError(t, rr.Rotate(ctx, old.ID, replacement))

		rotated, err := rr.GetByHash(ctx, old.TokenHash)
		require.NoError(t, err)
		require.NotNil(t, rotated.RevokedAt)
		require.NotNil(t, rotated.ReplacedBy)
		require.Equal(t, replacement.ID, *rotated.ReplacedBy)

		fresh, err := rr.GetByHash(ctx, replacement.TokenHash)
		require.NoError(t, err)
		require.Nil(t, fresh.RevokedAt)

		// Rotating the already-rotated record again must lose.
		err = rr.Rotate(ctx, old.ID, model.RefreshToken{
			ID:        uuid.New(),
			UserID:    owner.ID,
			TokenHash: hashOf("raw-other"),
			IssuedAt:  now,
			ExpiresAt: now.Add(time.Hour),
		})
		require.ErrorIs(t, err, model.ErrTokenRevoked)
	})

	t.Run("refresh_token_concurrent_rotation_single_winner", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		rr := repo.NewRefreshTokenRepository(conn)
		owner := createUser(t, ur, "race@example.com")

		now := time.Now()
		old := model.RefreshToken{
			ID:        uuid.New(),
			UserID:    owner.ID,
			TokenHash: hashOf("raw-race"),
			IssuedAt:  now,
			ExpiresAt: now.Add(time.Hour),
		}
		require.NoError(t, rr.Create(ctx, old))

		const attempts = 8
		errs := make([]error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = rr.Rotate(ctx, old.ID, model.RefreshToken{
					ID:        uuid.New(),
					UserID:    owner.ID,
					TokenHash: hashOf(fmt.Sprintf("raw-race-new-%d", i)),
					IssuedAt:  now,
					ExpiresAt: now.Add(time.Hour),
				})
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
			} else {
				require.ErrorIs(t, err, model.ErrTokenRevoked)
			}
		}
		require.Equal(t, 1, wins)
	})

	t.Run("refresh_token_revoke_all", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		rr := repo.NewRefreshTokenRepository(conn)
		owner := createUser(t, ur, "revokeall@example.com")

		now := time.Now()
		for i := 0; i < 3; i++ {
			require.NoError(t, rr.Create(ctx, model.RefreshToken{
				ID:        uuid.New(),
				UserID:    owner.ID,
				TokenHash: hashOf(fmt.Sprintf("revoke-all-%d", i)),
				IssuedAt:  now,
				ExpiresAt: now.Add(time.Hour),
			}))
		}
		require.NoError(t, rr.RevokeAllByUser(ctx, owner.ID))

		for i := 0; i < 3; i++ {
			rt, err := rr.GetByHash(ctx, hashOf(fmt.Sprintf("revoke-all-%d", i)))
			require.NoError(t, err)
			require.NotNil(t, rt.RevokedAt)
		}
	})

	t.Run("organizations_and_memberships", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		or := repo.NewOrganizationRepository(conn)
		mr := repo.NewMembershipRepository(conn)
		owner := createUser(t, ur, "orgowner@example.com")
		member := createUser(t, ur, "orgmember@example.com")

		org, err := or.Create(ctx, model.Organization{Name: "Acme", Description: "test org"})
		require.NoError(t, err)

		_, err = mr.Create(ctx, model.Membership{OrgID: org.ID, UserID: owner.ID, Role: model.RoleOwner})
		require.NoError(t, err)
		_, err = mr.Create(ctx, model.Membership{OrgID: org.ID, UserID: member.ID, Role: model.RoleMember})
		require.NoError(t, err)

		owned, err := or.GetByMember(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, owned, 1)

		count, err := mr.CountByRole(ctx, org.ID, model.RoleOwner)
		require.NoError(t, err)
		require.Equal(t, 1, count)

		promoted, err := mr.UpdateRole(ctx, org.ID, member.ID, model.RoleAdmin)
		require.NoError(t, err)
		require.Equal(t, model.RoleAdmin, promoted.Role)

		require.NoError(t, mr.Delete(ctx, org.ID, member.ID))
		_, err = mr.Get(ctx, org.ID, member.ID)
		require.ErrorIs(t, err, model.ErrNotFound)

		require.NoError(t, or.SoftDelete(ctx, org.ID))
		_, err = or.GetByID(ctx, org.ID)
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("invitations_single_use", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		or := repo.NewOrganizationRepository(conn)
		ir := repo.NewInvitationRepository(conn)
		inviter := createUser(t, ur, "inviter@example.com")

		org, err := or.Create(ctx, model.Organization{Name: "Invites"})
		require.NoError(t, err)

		inv, err := ir.Create(ctx, model.Invitation{
			OrgID:     org.ID,
			Email:     "invitee@example.com",
			Role:      model.RoleMember,
			TokenHash: hashOf("invite-token"),
			InvitedBy: inviter.ID,
			ExpiresAt: time.Now().Add(model.InvitationDuration),
		})
		require.NoError(t, err)

		require.NoError(t, ir.Consume(ctx, inv.ID))
		require.ErrorIs(t, ir.Consume(ctx, inv.ID), model.ErrInvitationConsumed)
		require.ErrorIs(t, ir.Revoke(ctx, inv.ID), model.ErrInvitationConsumed)
	})

	t.Run("audit_log", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		or := repo.NewOrganizationRepository(conn)
		ar := repo.NewAuditRepository(conn)
		actor := createUser(t, ur, "auditor@example.com")

		org, err := or.Create(ctx, model.Organization{Name: "Audited"})
		require.NoError(t, err)

		require.NoError(t, ar.Append(ctx, model.AuditEntry{
			OrgID:      &org.ID,
			ActorID:    &actor.ID,
			Action:     model.AuditOrgCreated,
			EntityType: "organization",
			EntityID:   org.ID.String(),
			Metadata:   map[string]string{"name": "Audited"},
			IP:         "10.0.0.1",
		}))

		entries, err := ar.ListByOrg(ctx, org.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, model.AuditOrgCreated, entries[0].Action)
	})
}
