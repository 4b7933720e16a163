package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/tripbot/core/logger"
)

// catalog tables; never built from user input.
const (
	tableVehicles = "vehicles"
	tableRoutes   = "routes"
)

// SQLStore implements Store on PostgreSQL or SQLite through sqlx. Queries are
// written with '?' placeholders and rebound for the connected driver.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLStore wraps an open connection. The schema must already be migrated.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) AddVehicle(ctx context.Context, name string) (bool, error) {
	return s.addName(ctx, tableVehicles, name)
}

func (s *SQLStore) RemoveVehicle(ctx context.Context, name string) (bool, error) {
	return s.removeName(ctx, tableVehicles, name)
}

func (s *SQLStore) ListVehicles(ctx context.Context) ([]string, error) {
	return s.listNames(ctx, tableVehicles)
}

func (s *SQLStore) AddRoute(ctx context.Context, name string) (bool, error) {
	return s.addName(ctx, tableRoutes, name)
}

func (s *SQLStore) RemoveRoute(ctx context.Context, name string) (bool, error) {
	return s.removeName(ctx, tableRoutes, name)
}

func (s *SQLStore) ListRoutes(ctx context.Context) ([]string, error) {
	return s.listNames(ctx, tableRoutes)
}

func (s *SQLStore) addName(ctx context.Context, table, name string) (bool, error) {
	q := s.db.Rebind("INSERT INTO " + table + " (name) VALUES (?) ON CONFLICT (name) DO NOTHING")
	res, err := s.db.ExecContext(ctx, q, name)
	if err != nil {
		return false, unavailable("add "+table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("add "+table, err)
	}
	logger.Store.Debug("catalog add",
		slog.String("event", "catalog.add"),
		slog.String("op", table),
		slog.Bool("inserted", n > 0),
	)
	return n > 0, nil
}

func (s *SQLStore) removeName(ctx context.Context, table, name string) (bool, error) {
	q := s.db.Rebind("DELETE FROM " + table + " WHERE name = ?")
	res, err := s.db.ExecContext(ctx, q, name)
	if err != nil {
		return false, unavailable("remove "+table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("remove "+table, err)
	}
	return n > 0, nil
}

func (s *SQLStore) listNames(ctx context.Context, table string) ([]string, error) {
	names := []string{}
	if err := s.db.SelectContext(ctx, &names, "SELECT name FROM "+table+" ORDER BY name"); err != nil {
		return nil, unavailable("list "+table, err)
	}
	return names, nil
}

func (s *SQLStore) UpsertUser(ctx context.Context, userID int64, displayName string) error {
	now := s.now().UTC()
	q := s.db.Rebind(`INSERT INTO users (user_id, display_name, phone, created_at, updated_at)
VALUES (?, ?, '', ?, ?)
ON CONFLICT (user_id) DO UPDATE SET display_name = excluded.display_name, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, q, userID, displayName, now, now); err != nil {
		return unavailable("upsert user", err)
	}
	return nil
}

func (s *SQLStore) SetUserPhone(ctx context.Context, userID int64, phone string) error {
	now := s.now().UTC()
	q := s.db.Rebind(`INSERT INTO users (user_id, display_name, phone, created_at, updated_at)
VALUES (?, '', ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET phone = excluded.phone, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, q, userID, phone, now, now); err != nil {
		return unavailable("set user phone", err)
	}
	return nil
}

func (s *SQLStore) GetUser(ctx context.Context, userID int64) (User, bool, error) {
	var u User
	q := s.db.Rebind("SELECT user_id, display_name, phone, created_at, updated_at FROM users WHERE user_id = ?")
	err := s.db.GetContext(ctx, &u, q, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return User{}, false, nil
	case err != nil:
		return User{}, false, unavailable("get user", err)
	}
	return u, true, nil
}

func (s *SQLStore) CountUsers(ctx context.Context) (int, error) {
	return s.count(ctx, "users")
}

func (s *SQLStore) AppendOrder(ctx context.Context, o Order) (int64, error) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	q := s.db.Rebind(`INSERT INTO orders
(ref, user_id, direction, trip_date, phone, trip_type, car, address, comment, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	var id int64
	err := s.db.QueryRowxContext(ctx, q,
		o.Ref, o.UserID, o.Direction, o.Date, o.Phone, o.TripType, o.Car, o.Address, o.Comment, o.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, unavailable("append order", err)
	}
	logger.Store.Debug("order appended",
		slog.String("event", "order.append"),
		slog.Int64("order_id", id),
		slog.String("order_ref", o.Ref),
	)
	return id, nil
}

func (s *SQLStore) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	q := `SELECT id, ref, user_id, direction, trip_date, phone, trip_type, car, address, comment, created_at
FROM orders ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	orders := []Order{}
	if err := s.db.SelectContext(ctx, &orders, s.db.Rebind(q), args...); err != nil {
		return nil, unavailable("list orders", err)
	}
	return orders, nil
}

func (s *SQLStore) CountOrders(ctx context.Context) (int, error) {
	return s.count(ctx, "orders")
}

func (s *SQLStore) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, unavailable("count "+table, err)
	}
	return n, nil
}
