// File: internal/repository/tx.go
package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxManager runs a unit of work inside a single database transaction.
// The create-chat path is the one place that demands this discipline:
// chat creation, the user-message insert, and the assistant-message insert
// either all succeed or all roll back, so a chat can never exist with
// zero messages or a dangling title.
type TxManager interface {
	Do(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(fn)
}
