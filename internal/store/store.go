// Package store persists application records and branch passwords.
package store

import (
	"context"
	"errors"

	"smartstore-backend/internal/models"
)

// ErrBranchPasswordExists is returned when a branch already has a password;
// registration never overwrites one.
var ErrBranchPasswordExists = errors.New("store: branch password already registered")

// RecordStore is the only way the service touches stored data.
type RecordStore interface {
	// SubmitApplication stores draft as a new record and fills in its ID and
	// Date.
	SubmitApplication(ctx context.Context, draft *models.ApplicationRecord) error
	// RegisterBranchPassword sets the password of a branch that has none.
	RegisterBranchPassword(ctx context.Context, branchName, password string) error
	// ListRecords returns every record, newest first.
	ListRecords(ctx context.Context) ([]models.ApplicationRecord, error)
	ListBranchAuths(ctx context.Context) ([]models.BranchAuth, error)
}
