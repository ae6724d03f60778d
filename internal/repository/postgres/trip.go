package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cargoride/internal/domain"
	"cargoride/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, payer_id, member_id, account_id, driver_id, vehicle_class,
		pickup_address, dropoff_address, distance_km, fare_estimate, final_fare,
		payment_method, status, settlement, business_trip,
		quote_commodity_price, quote_raw_price, quote_model, quote_tier_max_km, quote_min_fare_applied,
		created_at, completed_at, cancelled_at, cancel_reason`

// Create persists a new trip, including its immutable fare quote snapshot.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.PayerID,
		trip.MemberID,
		trip.AccountID,
		trip.DriverID,
		trip.VehicleClass,
		trip.PickupAddress,
		trip.DropoffAddress,
		trip.DistanceKm,
		trip.FareEstimate,
		trip.FinalFare,
		trip.PaymentMethod,
		trip.Status,
		trip.Settlement,
		trip.BusinessTrip,
		trip.Quote.CommodityPrice,
		trip.Quote.RawPrice,
		trip.Quote.Model,
		trip.Quote.TierMaxKm,
		trip.Quote.MinFareApplied,
		trip.CreatedAt,
		nullTime(trip.CompletedAt),
		nullTime(trip.CancelledAt),
		trip.CancelReason,
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// GetAll retrieves recent trips.
func (r *TripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// Update updates an existing trip. The quote snapshot columns are written
// back unchanged; the snapshot is immutable after creation.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET driver_id = $1, final_fare = $2, status = $3, settlement = $4,
		    completed_at = $5, cancelled_at = $6, cancel_reason = $7
		WHERE id = $8
	`

	result, err := r.q.ExecContext(ctx, query,
		trip.DriverID,
		trip.FinalFare,
		trip.Status,
		trip.Settlement,
		nullTime(trip.CompletedAt),
		nullTime(trip.CancelledAt),
		trip.CancelReason,
		trip.ID,
	)
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

// SumMemberSpendSince sums the member's committed spend for non-cancelled
// trips created at or after the given time. Settled trips count at their
// final fare, reserved ones at the estimate.
func (r *TripRepository) SumMemberSpendSince(ctx context.Context, memberID string, since time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN final_fare > 0 THEN final_fare ELSE fare_estimate END), 0)
		FROM trips
		WHERE member_id = $1 AND created_at >= $2 AND status != $3
	`

	var total int64
	err := r.q.QueryRowContext(ctx, query, memberID, since, domain.TripStatusCancelled).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTrip(s scanner) (*domain.Trip, error) {
	var trip domain.Trip
	var completedAt sql.NullTime
	var cancelledAt sql.NullTime

	err := s.Scan(
		&trip.ID,
		&trip.PayerID,
		&trip.MemberID,
		&trip.AccountID,
		&trip.DriverID,
		&trip.VehicleClass,
		&trip.PickupAddress,
		&trip.DropoffAddress,
		&trip.DistanceKm,
		&trip.FareEstimate,
		&trip.FinalFare,
		&trip.PaymentMethod,
		&trip.Status,
		&trip.Settlement,
		&trip.BusinessTrip,
		&trip.Quote.CommodityPrice,
		&trip.Quote.RawPrice,
		&trip.Quote.Model,
		&trip.Quote.TierMaxKm,
		&trip.Quote.MinFareApplied,
		&trip.CreatedAt,
		&completedAt,
		&cancelledAt,
		&trip.CancelReason,
	)
	if err != nil {
		return nil, err
	}

	trip.Quote.BusinessMargin = trip.BusinessTrip
	if completedAt.Valid {
		trip.CompletedAt = completedAt.Time
	}
	if cancelledAt.Valid {
		trip.CancelledAt = cancelledAt.Time
	}

	return &trip, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
