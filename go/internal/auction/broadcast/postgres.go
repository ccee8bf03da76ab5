package broadcast

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mcdev12/liveauction/go/internal/auction/events"
	"github.com/sqlc-dev/pqtype"
)

const stateSchema = `
CREATE TABLE IF NOT EXISTS auction_state (
    id         INTEGER PRIMARY KEY,
    version    BIGINT NOT NULL,
    event_type TEXT NOT NULL,
    state      JSONB,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Upsert keeps the row at the newest version even if deliveries overlap.
const upsertState = `
INSERT INTO auction_state (id, version, event_type, state, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
  version = EXCLUDED.version,
  event_type = EXCLUDED.event_type,
  state = EXCLUDED.state,
  updated_at = EXCLUDED.updated_at
WHERE auction_state.version < EXCLUDED.version`

// execer is the part of *sql.DB the state store uses
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// StateStore keeps the latest snapshot in a single auction_state row, for
// clients that poll or subscribe to the table instead of the websocket.
type StateStore struct {
	db    execer
	rowID int
}

func NewStateStore(db *sql.DB) *StateStore {
	return &StateStore{db: db, rowID: 1}
}

// EnsureSchema creates the auction_state table if it does not exist
func (s *StateStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, stateSchema); err != nil {
		return fmt.Errorf("create auction_state: %w", err)
	}
	return nil
}

func (s *StateStore) Name() string { return "postgres" }

func (s *StateStore) Publish(ctx context.Context, env events.Envelope) error {
	state := pqtype.NullRawMessage{RawMessage: env.Data, Valid: len(env.Data) > 0}
	_, err := s.db.ExecContext(ctx, upsertState,
		s.rowID, int64(env.Version), string(env.Type), state, env.Timestamp)
	if err != nil {
		return fmt.Errorf("upsert auction_state: %w", err)
	}
	return nil
}
