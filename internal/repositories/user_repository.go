package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/terenamutolder-oss/pro-node/internal/models"
	"github.com/terenamutolder-oss/pro-node/internal/store"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameTaken  = errors.New("username already used")
	ErrAlreadyFriends = errors.New("already friends")
	ErrInvitePending  = errors.New("invite already sent")
	ErrNoSuchInvite   = errors.New("no pending invite")
)

// UserRepository abstracts user persistence and the friend graph.
type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	SendInvite(ctx context.Context, fromID, toUsername string) (models.User, error)
	AcceptInvite(ctx context.Context, userID, inviteFromID string) error
}

// UserRepo implements UserRepository on top of the entity store.
type UserRepo struct {
	users *store.Store[models.User]
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(users *store.Store[models.User]) *UserRepo {
	return &UserRepo{users: users}
}

// CreateUser persists a new user with empty friend and invite sets.
func (r *UserRepo) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	if _, err := r.FindByUsername(ctx, username); err == nil {
		return models.User{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return models.User{}, err
	}

	user := models.User{
		ID:              uuid.New().String(),
		Username:        username,
		PasswordHash:    passwordHash,
		Friends:         []string{},
		InvitesReceived: []string{},
		InvitesSent:     []string{},
		CreatedAt:       time.Now().UTC(),
	}
	return r.users.Create(user)
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(_ context.Context, id string) (models.User, error) {
	user, err := r.users.Get(id)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// FindByUsername looks a user up by its unique username.
func (r *UserRepo) FindByUsername(_ context.Context, username string) (models.User, error) {
	matches, err := r.users.Query(func(u models.User) bool {
		return u.Username == username
	})
	if err != nil {
		return models.User{}, err
	}
	if len(matches) == 0 {
		return models.User{}, ErrUserNotFound
	}
	return matches[0], nil
}

// SendInvite records a pending friend invite from fromID to the user named
// toUsername and returns the recipient so the caller can notify it. The
// recipient is mutated first; a failure between the two mutations leaves a
// visible invite rather than a dangling invitesSent entry.
func (r *UserRepo) SendInvite(ctx context.Context, fromID, toUsername string) (models.User, error) {
	sender, err := r.GetUser(ctx, fromID)
	if err != nil {
		return models.User{}, err
	}
	target, err := r.FindByUsername(ctx, toUsername)
	if err != nil {
		return models.User{}, err
	}

	recipient, err := r.users.Mutate(target.ID, func(u models.User) (models.User, error) {
		if u.IsFriend(sender.ID) {
			return u, ErrAlreadyFriends
		}
		if u.HasInviteFrom(sender.ID) {
			return u, ErrInvitePending
		}
		u.InvitesReceived = models.AddUnique(u.InvitesReceived, sender.ID)
		return u, nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	if _, err := r.users.Mutate(sender.ID, func(u models.User) (models.User, error) {
		u.InvitesSent = models.AddUnique(u.InvitesSent, recipient.ID)
		return u, nil
	}); err != nil {
		return models.User{}, err
	}
	return recipient, nil
}

// AcceptInvite turns a pending invite into a symmetric friendship and clears
// the invite from both sides. The invite-presence guard runs inside the
// accepting user's mutation, so a second accept for the same pair fails with
// ErrNoSuchInvite instead of duplicating state.
func (r *UserRepo) AcceptInvite(_ context.Context, userID, inviteFromID string) error {
	if _, err := r.users.Get(inviteFromID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if _, err := r.users.Mutate(userID, func(u models.User) (models.User, error) {
		if !u.HasInviteFrom(inviteFromID) {
			return u, ErrNoSuchInvite
		}
		u.Friends = models.AddUnique(u.Friends, inviteFromID)
		u.InvitesReceived = models.Remove(u.InvitesReceived, inviteFromID)
		return u, nil
	}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	_, err := r.users.Mutate(inviteFromID, func(u models.User) (models.User, error) {
		u.Friends = models.AddUnique(u.Friends, userID)
		u.InvitesSent = models.Remove(u.InvitesSent, userID)
		return u, nil
	})
	return err
}
