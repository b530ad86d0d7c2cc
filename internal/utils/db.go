package utils

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBOption mutates a gorm query before execution. Repositories accept a
// variadic list so callers can inject a transaction or a row lock without
// the repository knowing about either.
type DBOption func(*gorm.DB) *gorm.DB

func ApplyOptions(db *gorm.DB, opts ...DBOption) *gorm.DB {
	for _, opt := range opts {
		if opt != nil {
			db = opt(db)
		}
	}
	return db
}

// WithTx routes the query through an open transaction.
func WithTx(tx *gorm.DB) DBOption {
	return func(db *gorm.DB) *gorm.DB {
		if tx == nil {
			return db
		}
		return tx
	}
}

// WithLockForUpdate takes a SELECT ... FOR UPDATE row lock. Used to
// serialize concurrent transitions on the same execution across instances.
func WithLockForUpdate() DBOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
}
