// Package session keeps per-user conversation snapshots between updates.
package session

import (
	"context"
	"strconv"
)

// Store maps a user id to the latest snapshot of type T. A missing entry is
// reported with ok == false and means the user has no conversation in progress.
type Store[T any] interface {
	Get(ctx context.Context, userID int64) (T, bool, error)
	Put(ctx context.Context, userID int64, v T) error
	Delete(ctx context.Context, userID int64) error
}

func key(userID int64) []byte {
	return []byte("session:" + strconv.FormatInt(userID, 10))
}
