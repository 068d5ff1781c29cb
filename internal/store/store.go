package store

import (
	"context"

	"github.com/ligoview/ligoview/internal/viewstate"
)

// Store defines the interface for saved view storage operations
type Store interface {
	// View operations
	SaveView(ctx context.Context, name string, v *viewstate.ViewState) (*SavedView, error)
	GetView(ctx context.Context, name string) (*SavedView, error)
	ListViews(ctx context.Context) ([]*SavedView, error)
	DeleteView(ctx context.Context, name string) error
	CountViews(ctx context.Context) (int, error)

	// Settings
	SetSetting(ctx context.Context, key, value string) error
	GetSetting(ctx context.Context, key string) (string, error)

	// Lifecycle
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
