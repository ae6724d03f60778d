package domain

import "time"

// Driver represents a driver identity in the system.
type Driver struct {
	ID        string
	Name      string
	Phone     string
	Active    bool
	CreatedAt time.Time
}

// DriverWallet is a driver's running balance, credited on settlement. It is
// mutated only by the ledger's settle operation.
type DriverWallet struct {
	DriverID  string
	Balance   int64
	UpdatedAt time.Time
}
