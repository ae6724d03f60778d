package postgres

import (
	"context"
	"database/sql"
	"errors"

	"cargoride/internal/domain"
	"cargoride/internal/repository"
)

// MemberRepository is a PostgreSQL implementation of repository.MemberRepository.
type MemberRepository struct {
	q Querier
}

// NewMemberRepository creates a new PostgreSQL member repository.
func NewMemberRepository(db *sql.DB) *MemberRepository {
	return &MemberRepository{q: db}
}

// NewMemberRepositoryWithTx creates a member repository using a transaction.
func NewMemberRepositoryWithTx(tx *sql.Tx) *MemberRepository {
	return &MemberRepository{q: tx}
}

// Create persists a new member.
func (r *MemberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (id, account_id, name, phone, daily_spend_limit, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var limit sql.NullInt64
	if member.DailySpendLimit != nil {
		limit = sql.NullInt64{Int64: *member.DailySpendLimit, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		member.ID,
		member.AccountID,
		member.Name,
		member.Phone,
		limit,
		member.Active,
		member.CreatedAt,
	)

	return err
}

// GetByID retrieves a member by ID.
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	query := `
		SELECT id, account_id, name, phone, daily_spend_limit, active, created_at
		FROM members WHERE id = $1
	`

	var member domain.Member
	var limit sql.NullInt64

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&member.ID,
		&member.AccountID,
		&member.Name,
		&member.Phone,
		&limit,
		&member.Active,
		&member.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if limit.Valid {
		member.DailySpendLimit = &limit.Int64
	}

	return &member, nil
}

// GetByAccountID retrieves all members of an account.
func (r *MemberRepository) GetByAccountID(ctx context.Context, accountID string) ([]*domain.Member, error) {
	query := `
		SELECT id, account_id, name, phone, daily_spend_limit, active, created_at
		FROM members WHERE account_id = $1 ORDER BY created_at
	`

	rows, err := r.q.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		var member domain.Member
		var limit sql.NullInt64

		if err := rows.Scan(
			&member.ID,
			&member.AccountID,
			&member.Name,
			&member.Phone,
			&limit,
			&member.Active,
			&member.CreatedAt,
		); err != nil {
			return nil, err
		}

		if limit.Valid {
			member.DailySpendLimit = &limit.Int64
		}

		members = append(members, &member)
	}

	return members, rows.Err()
}

// UpdateDailyLimit sets the member's daily spending cap.
func (r *MemberRepository) UpdateDailyLimit(ctx context.Context, id string, limit *int64) error {
	query := `UPDATE members SET daily_spend_limit = $1 WHERE id = $2`

	var value sql.NullInt64
	if limit != nil {
		value = sql.NullInt64{Int64: *limit, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query, value, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Ensure MemberRepository implements repository.MemberRepository.
var _ repository.MemberRepository = (*MemberRepository)(nil)
