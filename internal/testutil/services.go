package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/activities"
	"github.com/hugh/dealflow/internal/analytics"
	"github.com/hugh/dealflow/internal/auth"
	"github.com/hugh/dealflow/internal/contacts"
	"github.com/hugh/dealflow/internal/deals"
	"github.com/hugh/dealflow/internal/organizations"
	"github.com/hugh/dealflow/internal/tasks"
	"github.com/hugh/dealflow/internal/tenancy"
	"github.com/hugh/dealflow/pkg/crypto"
)

// Services wires every domain service over one Backend.
type Services struct {
	Backend       *Backend
	JWT           *auth.JWTService
	Auth          *auth.Service
	Organizations *organizations.Service
	Resolver      *tenancy.Resolver
	Contacts      *contacts.Service
	Activities    *activities.Service
	Deals         *deals.Service
	Tasks         *tasks.Service
	Analytics     *analytics.Aggregator
	Notifier      *RecordingNotifier
}

// NewServices builds the service graph with the clock fixed at now.
func NewServices(t *testing.T, b *Backend, now time.Time) *Services {
	t.Helper()

	enc, err := crypto.NewEncryptor("")
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}

	log := Logger()
	clock := FixedClock(now)
	jwtService := CreateTestJWTService()
	notifier := &RecordingNotifier{}

	contactService := contacts.NewService(b.Contacts, enc, b.Tx, log)
	activityService := activities.NewService(b.Activities, b.Deals, log, activities.WithClock(clock))

	return &Services{
		Backend:       b,
		JWT:           jwtService,
		Auth:          auth.NewService(b.Accounts, b.Tx, jwtService, log),
		Organizations: organizations.NewService(b.Accounts, b.Tx, log),
		Resolver:      tenancy.NewResolver(b.Accounts),
		Contacts:      contactService,
		Activities:    activityService,
		Deals: deals.NewService(b.Deals, contactService, activityService, b.Tx, log,
			deals.WithClock(clock), deals.WithNotifier(notifier)),
		Tasks:     tasks.NewService(b.Tasks, b.Deals, activityService, b.Tx, log, tasks.WithClock(clock)),
		Analytics: analytics.NewAggregator(b.Analytics, log, analytics.WithClock(clock)),
		Notifier:  notifier,
	}
}

// RecordingNotifier records the organizations reported as changed.
type RecordingNotifier struct {
	mu   sync.Mutex
	orgs []uuid.UUID
}

func (n *RecordingNotifier) DealsChanged(_ context.Context, orgID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orgs = append(n.orgs, orgID)
}

func (n *RecordingNotifier) Calls() []uuid.UUID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]uuid.UUID(nil), n.orgs...)
}
