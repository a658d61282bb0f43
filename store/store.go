// Package store persists per-user sign-in records and group membership.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("record not found")

// UserRecord is everything the bot keeps for one registered user. The grant
// is the only credential stored; session credentials are re-derived on every
// run and never persisted.
type UserRecord struct {
	UserID      string
	Grant       string
	Nickname    string
	Destination string            // host-supplied address for outbound messages
	Platform    string            // messaging platform the user registered from
	LastSign    map[string]string // game -> yyyy-mm-dd of last confirmed sign-in
	BoundAt     time.Time
}

// UserRepo stores user records keyed by user identifier.
type UserRepo interface {
	Upsert(ctx context.Context, rec *UserRecord) error
	Get(ctx context.Context, userID string) (*UserRecord, error)
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context) ([]*UserRecord, error)
}

// GroupRepo stores group membership: which registered users belong to which
// chat group, for the group status report.
type GroupRepo interface {
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	Members(ctx context.Context, groupID string) ([]string, error)
}
