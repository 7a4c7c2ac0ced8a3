// Package sqlstore implements every domain store over gorm. All handles are
// resolved through database.Conn so calls made inside a Transactor join the
// request transaction.
package sqlstore

import (
	"context"
	"errors"

	"github.com/hugh/dealflow/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB

	Deals      *DealStore
	Contacts   *ContactStore
	Activities *ActivityStore
	Tasks      *TaskStore
	Accounts   *AccountStore
	Analytics  *AnalyticsSource
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Deals:      &DealStore{db: db},
		Contacts:   &ContactStore{db: db},
		Activities: &ActivityStore{db: db},
		Tasks:      &TaskStore{db: db},
		Accounts:   &AccountStore{db: db},
		Analytics:  &AnalyticsSource{db: db},
	}
}

// Transactor returns the unit-of-work runner for this store's database.
func (s *Store) Transactor() *database.Transactor {
	return database.NewTransactor(s.db)
}

func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	return database.Conn(ctx, db)
}

// forUpdate adds a row lock on engines that support SELECT ... FOR UPDATE.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func duplicate(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return sentinel
	}
	return err
}
