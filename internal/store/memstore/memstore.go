// Package memstore is an in-memory implementation of every domain store. It
// honours the same organization scoping, not-found and conflict semantics as
// sqlstore, and its Transactor rolls back on error.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/database/models"
)

type membershipKey struct {
	orgID  uuid.UUID
	userID uuid.UUID
}

type state struct {
	orgs        map[uuid.UUID]models.Organization
	users       map[uuid.UUID]models.User
	memberships map[membershipKey]models.Membership
	contacts    map[uuid.UUID]models.Contact
	deals       map[uuid.UUID]models.Deal
	activities  []models.Activity
	tasks       []models.Task
}

func newState() state {
	return state{
		orgs:        map[uuid.UUID]models.Organization{},
		users:       map[uuid.UUID]models.User{},
		memberships: map[membershipKey]models.Membership{},
		contacts:    map[uuid.UUID]models.Contact{},
		deals:       map[uuid.UUID]models.Deal{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.orgs {
		c.orgs[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.memberships {
		c.memberships[k] = v
	}
	for k, v := range s.contacts {
		c.contacts[k] = v
	}
	for k, v := range s.deals {
		c.deals[k] = copyDeal(v)
	}
	c.activities = make([]models.Activity, len(s.activities))
	for i, a := range s.activities {
		c.activities[i] = copyActivity(a)
	}
	c.tasks = append([]models.Task(nil), s.tasks...)
	return c
}

// Store holds all data behind one lock.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data state
	now  func() time.Time
	seq  int64 // last activity sequence number, guarded by mu

	Deals      *DealStore
	Contacts   *ContactStore
	Activities *ActivityStore
	Tasks      *TaskStore
	Accounts   *AccountStore
	Analytics  *AnalyticsSource
}

func New() *Store {
	s := &Store{data: newState(), now: time.Now}
	s.Deals = &DealStore{s: s}
	s.Contacts = &ContactStore{s: s}
	s.Activities = &ActivityStore{s: s}
	s.Tasks = &TaskStore{s: s}
	s.Accounts = &AccountStore{s: s}
	s.Analytics = &AnalyticsSource{s: s}
	return s
}

type txKey struct{}

// Transactor returns the Store itself, which implements WithinTx.
func (s *Store) Transactor() *Store {
	return s
}

// WithinTx serializes units of work and restores the pre-transaction state
// when fn fails. Nested calls join the outer unit. Writes made outside
// WithinTx wait for the running unit, so a rollback only discards its own
// writes.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock takes the write lock and returns its release. A write outside
// WithinTx also holds txMu, so a concurrent rollback cannot discard it.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

// stamp fills ID and timestamps the way the gorm hooks do.
func (s *Store) stamp(base *models.Base) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	now := s.now().UTC()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	if base.UpdatedAt.IsZero() {
		base.UpdatedAt = base.CreatedAt
	}
}

func copyDeal(d models.Deal) models.Deal {
	if d.OwnerID != nil {
		id := *d.OwnerID
		d.OwnerID = &id
	}
	d.Organization, d.Contact, d.Activities, d.Tasks = nil, nil, nil, nil
	return d
}

func copyActivity(a models.Activity) models.Activity {
	if a.AuthorID != nil {
		id := *a.AuthorID
		a.AuthorID = &id
	}
	if a.Payload != nil {
		p := make(map[string]interface{}, len(a.Payload))
		for k, v := range a.Payload {
			p[k] = v
		}
		a.Payload = p
	}
	return a
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
