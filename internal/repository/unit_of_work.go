package repository

import (
	"golang-maintenance-work-order/internal/utils"

	"gorm.io/gorm"
)

// UnitOfWork runs a function inside a single database transaction. The
// function receives the option that routes repository calls through the
// transaction; the state change and everything written with it commit
// together or not at all.
type UnitOfWork interface {
	Run(fn func(opts ...utils.DBOption) error) error
}

type unitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) Run(fn func(opts ...utils.DBOption) error) error {
	return u.db.Transaction(func(tx *gorm.DB) error {
		return fn(utils.WithTx(tx))
	})
}
