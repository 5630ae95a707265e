// Package repo holds the pieces every gorm-backed repository shares.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// Scope narrows a query. It has the shape gorm's Scopes expects.
type Scope = func(*gorm.DB) *gorm.DB

// Base is embedded by repositories that can be rebound to a transaction.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the handle bound to ctx; a nil ctx yields the bare handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// WithTx rebinds b to tx. A nil tx leaves b unchanged.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// First loads one T. A missing row surfaces as gorm.ErrRecordNotFound.
func First[T any](ctx context.Context, b Base, scopes ...Scope) (*T, error) {
	var row T
	if err := b.DB(ctx).Scopes(scopes...).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Find loads every T matching scopes.
func Find[T any](ctx context.Context, b Base, scopes ...Scope) ([]T, error) {
	var rows []T
	if err := b.DB(ctx).Scopes(scopes...).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Where is the single-condition Scope.
func Where(query string, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}

func OrderBy(columns ...string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		for _, c := range columns {
			db = db.Order(c)
		}
		return db
	}
}
