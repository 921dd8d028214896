package models

import "time"

// User is an account holder together with its friend graph state.
// Friends is symmetric: a user id appears in it iff this user appears in
// that user's Friends. A pair of users is never simultaneously friends and
// pending in either invite set.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	PasswordHash    string    `json:"passwordHash,omitempty"`
	Friends         []string  `json:"friends"`
	InvitesReceived []string  `json:"invitesReceived"`
	InvitesSent     []string  `json:"invitesSent"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Key returns the storage key of the user.
func (u User) Key() string { return u.ID }

// Public returns a copy safe to expose over the API.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// IsFriend reports whether id is in the user's friend set.
func (u User) IsFriend(id string) bool { return contains(u.Friends, id) }

// HasInviteFrom reports whether a pending invite from id exists.
func (u User) HasInviteFrom(id string) bool { return contains(u.InvitesReceived, id) }

// AddUnique appends id to set unless already present.
func AddUnique(set []string, id string) []string {
	if contains(set, id) {
		return set
	}
	return append(set, id)
}

// Remove deletes id from set; removing an absent id is a no-op.
func Remove(set []string, id string) []string {
	out := set[:0]
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}
