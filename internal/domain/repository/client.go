package repository

import (
	"context"

	"github.com/vfaivre/thumbdesk/internal/domain/model"
)

// ClientRepository describes persistence operations for clients.
type ClientRepository interface {
	Create(ctx context.Context, name string) (*model.Client, error)
	GetByID(ctx context.Context, id int64) (*model.Client, error)
}
