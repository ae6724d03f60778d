package repository

import (
	"context"
	"time"

	"cargoride/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetAll retrieves recent trips.
	GetAll(ctx context.Context) ([]*domain.Trip, error)

	// Update updates an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error

	// SumMemberSpendSince sums the member's committed spend (final fare when
	// settled, else the reserved estimate) for non-cancelled trips created
	// at or after the given time.
	SumMemberSpendSince(ctx context.Context, memberID string, since time.Time) (int64, error)
}
