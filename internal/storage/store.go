// Package storage keeps the vehicle and route catalog together with user and
// order records.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable wraps every failure of the underlying database. Callers map
// it to a "try again" reply and keep the conversation where it was.
var ErrUnavailable = errors.New("store unavailable")

// User is the last known profile of a chat user.
type User struct {
	ID          int64     `db:"user_id"`
	DisplayName string    `db:"display_name"`
	Phone       string    `db:"phone"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Order is an immutable committed trip or parcel request.
type Order struct {
	ID        int64     `db:"id"`
	Ref       string    `db:"ref"`
	UserID    int64     `db:"user_id"`
	Direction string    `db:"direction"`
	Date      string    `db:"trip_date"`
	Phone     string    `db:"phone"`
	TripType  string    `db:"trip_type"`
	Car       string    `db:"car"`
	Address   string    `db:"address"`
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
}

// Store is the catalog and record store used by the conversation core.
// Every call is atomic on its own; no call spans a transaction with another.
type Store interface {
	// AddVehicle reports false when the name already exists.
	AddVehicle(ctx context.Context, name string) (bool, error)
	// RemoveVehicle reports whether a row was removed.
	RemoveVehicle(ctx context.Context, name string) (bool, error)
	// ListVehicles returns names in lexicographic order.
	ListVehicles(ctx context.Context) ([]string, error)

	AddRoute(ctx context.Context, name string) (bool, error)
	RemoveRoute(ctx context.Context, name string) (bool, error)
	ListRoutes(ctx context.Context) ([]string, error)

	UpsertUser(ctx context.Context, userID int64, displayName string) error
	SetUserPhone(ctx context.Context, userID int64, phone string) error
	GetUser(ctx context.Context, userID int64) (User, bool, error)
	CountUsers(ctx context.Context) (int, error)

	// AppendOrder stores o and returns its id. o.ID is ignored.
	AppendOrder(ctx context.Context, o Order) (int64, error)
	// ListOrders returns the newest orders first; limit <= 0 means all.
	ListOrders(ctx context.Context, limit int) ([]Order, error)
	CountOrders(ctx context.Context) (int, error)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
