package repositories

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/terenamutolder-oss/pro-node/internal/models"
	"github.com/terenamutolder-oss/pro-node/internal/store"
)

func newUserRepo(t *testing.T) *UserRepo {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(store.New[models.User](db, "user"))
}

func TestCreateUserAndLookup(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "alice", user.Username)
	require.Empty(t, user.Friends)
	require.Empty(t, user.InvitesReceived)
	require.Empty(t, user.InvitesSent)

	byID, err := repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, byID.ID)

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, user.ID, byName.ID)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, "alice", "other")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestGetUserMissing(t *testing.T) {
	repo := newUserRepo(t)

	_, err := repo.GetUser(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.FindByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSendInvite(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	alice, err := repo.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)
	bob, err := repo.CreateUser(ctx, "bob", "h")
	require.NoError(t, err)

	recipient, err := repo.SendInvite(ctx, alice.ID, "bob")
	require.NoError(t, err)
	require.Equal(t, bob.ID, recipient.ID)

	bobStored, err := repo.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	require.True(t, bobStored.HasInviteFrom(alice.ID))

	aliceStored, err := repo.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Contains(t, aliceStored.InvitesSent, bob.ID)
}

func TestSendInviteUnknownTarget(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	alice, err := repo.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)

	_, err = repo.SendInvite(ctx, alice.ID, "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSendInviteTwice(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	alice, err := repo.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, "bob", "h")
	require.NoError(t, err)

	_, err = repo.SendInvite(ctx, alice.ID, "bob")
	require.NoError(t, err)
	_, err = repo.SendInvite(ctx, alice.ID, "bob")
	require.ErrorIs(t, err, ErrInvitePending)
}

func TestSendInviteAlreadyFriends(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	alice, err := repo.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)
	bob, err := repo.CreateUser(ctx, "bob", "h")
	require.NoError(t, err)

	_, err = repo.SendInvite(ctx, alice.ID, "bob")
	require.NoError(t, err)
	require.NoError(t, repo.AcceptInvite(ctx, bob.ID, alice.ID))

	_, err = repo.SendInvite(ctx, alice.ID, "bob")
	require.ErrorIs(t, err, ErrAlreadyFriends)
}

// Accepting builds a symmetric friendship and clears the invite on both
// sides.
func TestAcceptInvite(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	alice, err := repo.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)
	bob, err := repo.CreateUser(ctx, "bob", "h")
	require.NoError(t, err)

	_, err = repo.SendInvite(ctx, alice.ID, "bob")
	require.NoError(t, err)
	require.NoError(t, repo.AcceptInvite(ctx, bob.ID, alice.ID))

	aliceStored, err := repo.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	bobStored, err := repo.GetUser(ctx, bob.ID)
	require.NoError(t, err)

	require.True(t, aliceStored.IsFriend(bob.ID))
	require.True(t, bobStored.IsFriend(alice.ID))
	require.Empty(t, aliceStored.InvitesSent)
	require.Empty(t, aliceStored.InvitesReceived)
	require.Empty(t, bobStored.InvitesSent)
	require.Empty(t, bobStored.InvitesReceived)
}

// A second accept for the same pair must fail instead of duplicating state.
func TestAcceptInviteTwice(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	alice, err := repo.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)
	bob, err := repo.CreateUser(ctx, "bob", "h")
	require.NoError(t, err)

	_, err = repo.SendInvite(ctx, alice.ID, "bob")
	require.NoError(t, err)
	require.NoError(t, repo.AcceptInvite(ctx, bob.ID, alice.ID))

	err = repo.AcceptInvite(ctx, bob.ID, alice.ID)
	require.ErrorIs(t, err, ErrNoSuchInvite)

	bobStored, err := repo.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobStored.Friends, 1)
}

func TestAcceptInviteUnknownUsers(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	alice, err := repo.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)

	require.ErrorIs(t, repo.AcceptInvite(ctx, alice.ID, "ghost"), ErrUserNotFound)
	require.ErrorIs(t, repo.AcceptInvite(ctx, "ghost", alice.ID), ErrUserNotFound)
}
