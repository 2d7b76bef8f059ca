package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("store: key not found")

// Store is the key-value capability every stateful component is built
// against. Writes are last-write-wins; concurrent writers to the same
// key are not coordinated.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Conceptual keys shared between the session manager and the archiver.
const (
	KeyUsers       = "users"
	KeyCurrentUser = "current_user"
	KeyResume      = "resume"
	KeyJobDesc     = "job_desc"
	KeyAnswers     = "answers"

	EvaluationKeyPrefix = "evaluation_"
)

// EvaluationKey returns the per-user evaluation record key.
func EvaluationKey(userID string) string {
	return EvaluationKeyPrefix + userID
}
