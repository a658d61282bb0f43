// Package storefakes provides in-memory store implementations for tests.
package storefakes

import (
	"context"
	"sort"
	"sync"

	"github.com/seelevollerei/skland-signin/store"
)

var _ store.UserRepo = (*FakeStore)(nil)
var _ store.GroupRepo = (*FakeStore)(nil)

// FakeStore keeps user records and group membership in memory.
type FakeStore struct {
	lock   sync.RWMutex
	users  map[string]*store.UserRecord
	groups map[string]map[string]bool
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		users:  make(map[string]*store.UserRecord),
		groups: make(map[string]map[string]bool),
	}
}

func (f *FakeStore) Upsert(_ context.Context, rec *store.UserRecord) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	cp := *rec
	f.users[rec.UserID] = &cp
	return nil
}

func (f *FakeStore) Get(_ context.Context, userID string) (*store.UserRecord, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	rec, ok := f.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *FakeStore) Delete(_ context.Context, userID string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if _, ok := f.users[userID]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, userID)
	for _, members := range f.groups {
		delete(members, userID)
	}
	return nil
}

func (f *FakeStore) List(_ context.Context) ([]*store.UserRecord, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	recs := make([]*store.UserRecord, 0, len(f.users))
	for _, rec := range f.users {
		cp := *rec
		recs = append(recs, &cp)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].UserID < recs[j].UserID })
	return recs, nil
}

func (f *FakeStore) AddMember(_ context.Context, groupID, userID string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.groups[groupID] == nil {
		f.groups[groupID] = make(map[string]bool)
	}
	f.groups[groupID][userID] = true
	return nil
}

func (f *FakeStore) RemoveMember(_ context.Context, groupID, userID string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	delete(f.groups[groupID], userID)
	return nil
}

func (f *FakeStore) Members(_ context.Context, groupID string) ([]string, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	var ids []string
	for id := range f.groups[groupID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
