package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/m3rciful/tripbot/core/logger"
)

type badgerStore[T any] struct {
	db *badger.DB
}

// NewBadgerStore persists snapshots as JSON values in db so conversations
// survive a restart.
func NewBadgerStore[T any](db *badger.DB) Store[T] {
	return &badgerStore[T]{db: db}
}

// OpenBadger opens (or creates) the badger directory used for snapshots.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	logger.Session.Info("session store opened",
		slog.String("event", "session.open"),
		slog.String("path", dir),
	)
	return db, nil
}

func (s *badgerStore[T]) Get(_ context.Context, userID int64) (T, bool, error) {
	var v T
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("read session %d: %w", userID, err)
	}
	return v, true, nil
}

func (s *badgerStore[T]) Put(_ context.Context, userID int64, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal session %d: %w", userID, err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(userID), raw)
	}); err != nil {
		return fmt.Errorf("store session %d: %w", userID, err)
	}
	return nil
}

func (s *badgerStore[T]) Delete(_ context.Context, userID int64) error {
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(userID))
	}); err != nil {
		return fmt.Errorf("delete session %d: %w", userID, err)
	}
	return nil
}

// badgerLogger routes badger's printf-style logs into the session component.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	logger.Session.Error(clean(format, args), slog.String("event", "badger"))
}

func (badgerLogger) Warningf(format string, args ...any) {
	logger.Session.Warn(clean(format, args), slog.String("event", "badger"))
}

func (badgerLogger) Infof(format string, args ...any) {
	logger.Session.Debug(clean(format, args), slog.String("event", "badger"))
}

func (badgerLogger) Debugf(format string, args ...any) {
	logger.Session.Debug(clean(format, args), slog.String("event", "badger"))
}

func clean(format string, args []any) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
