package repository

import (
	"context"

	"cargoride/internal/domain"
)

// MemberRepository defines the persistence operations for account members.
type MemberRepository interface {
	// Create persists a new member.
	Create(ctx context.Context, member *domain.Member) error

	// GetByID retrieves a member by ID.
	GetByID(ctx context.Context, id string) (*domain.Member, error)

	// GetByAccountID retrieves all members of an account.
	GetByAccountID(ctx context.Context, accountID string) ([]*domain.Member, error)

	// UpdateDailyLimit sets the member's daily spending cap. A nil limit
	// removes the cap.
	UpdateDailyLimit(ctx context.Context, id string, limit *int64) error
}
