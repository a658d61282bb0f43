package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/seelevollerei/skland-signin/store"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestSQLiteStore_UserRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := &store.UserRecord{
		UserID:      "user-1",
		Grant:       "grant-token",
		Nickname:    "博士",
		Destination: "private:user-1",
		Platform:    "qq",
		LastSign:    map[string]string{"arknights": "2026-08-30"},
		BoundAt:     time.Date(2026, 8, 30, 1, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Upsert(ctx, rec))

	got, err := s.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, rec, got)
}

func TestSQLiteStore_UpsertReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, &store.UserRecord{UserID: "user-1", Grant: "old", BoundAt: time.Now()}))
	require.NoError(t, s.Upsert(ctx, &store.UserRecord{UserID: "user-1", Grant: "new", Nickname: "n", BoundAt: time.Now()}))

	got, err := s.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "new", got.Grant, "re-login replaces the grant wholesale")
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSQLiteStore_DeleteRemovesMembership(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, &store.UserRecord{UserID: "user-1", Grant: "g", BoundAt: time.Now()}))
	require.NoError(t, s.AddMember(ctx, "group-1", "user-1"))
	require.NoError(t, s.Delete(ctx, "user-1"))

	_, err := s.Get(ctx, "user-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	members, err := s.Members(ctx, "group-1")
	require.NoError(t, err)
	require.Empty(t, members)

	require.ErrorIs(t, s.Delete(ctx, "user-1"), store.ErrNotFound)
}

func TestSQLiteStore_ListAndGroups(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, s.Upsert(ctx, &store.UserRecord{UserID: id, Grant: "g-" + id, BoundAt: time.Now()}))
	}
	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	require.Equal(t, "a", recs[0].UserID)

	require.NoError(t, s.AddMember(ctx, "group-1", "a"))
	require.NoError(t, s.AddMember(ctx, "group-1", "b"))
	require.NoError(t, s.AddMember(ctx, "group-1", "a")) // idempotent

	members, err := s.Members(ctx, "group-1")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, members)

	require.NoError(t, s.RemoveMember(ctx, "group-1", "a"))
	members, err = s.Members(ctx, "group-1")
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, members)
}
