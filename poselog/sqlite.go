package poselog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/PNisargkumar/Project-drone/odometry"
)

//go:embed schema.sql
var schemaSQL string

const (
	insertSessionSQL = `
INSERT INTO sessions (id, started_at, config)
VALUES (?, ?, ?)`

	insertPoseSQL = `
INSERT INTO poses (session_id, frame_index, t, x, y, z, qw, qx, qy, qz)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// SQLiteStore persists pose records into a sqlite database: one session row
// per store and one pose row per record.
type SQLiteStore struct {
	db         *sql.DB
	insertPose *sql.Stmt
	sessionID  string
}

// NewSQLiteStore opens the database at path, initializing the schema when
// needed, and starts a new session in it with cfg recorded alongside.
func NewSQLiteStore(path string, cfg *odometry.Config) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", path))
	if err != nil {
		return nil, errors.Wrap(err, "cannot open pose database")
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, multierr.Append(errors.Wrap(err, "cannot initialize pose schema"), db.Close())
	}
	var config sql.NullString
	if cfg != nil {
		data, err := json.Marshal(cfg)
		if err != nil {
			return nil, multierr.Append(errors.Wrap(err, "cannot marshal session config"), db.Close())
		}
		config = sql.NullString{String: string(data), Valid: true}
	}
	sessionID := uuid.New().String()
	if _, err := db.Exec(insertSessionSQL, sessionID, time.Now().UTC(), config); err != nil {
		return nil, multierr.Append(errors.Wrap(err, "cannot create session row"), db.Close())
	}
	insertPose, err := db.Prepare(insertPoseSQL)
	if err != nil {
		return nil, multierr.Append(errors.Wrap(err, "cannot prepare pose insert"), db.Close())
	}
	return &SQLiteStore{
		db:         db,
		insertPose: insertPose,
		sessionID:  sessionID,
	}, nil
}

// SessionID returns the uuid of the session the store writes under.
func (ss *SQLiteStore) SessionID() string {
	return ss.sessionID
}

// Publish inserts record into the poses table.
func (ss *SQLiteStore) Publish(ctx context.Context, record *odometry.PoseRecord) error {
	q := record.Orientation
	_, err := ss.insertPose.ExecContext(ctx,
		ss.sessionID,
		record.FrameIndex,
		record.Time.UTC(),
		record.Position.X, record.Position.Y, record.Position.Z,
		q.Real, q.Imag, q.Jmag, q.Kmag,
	)
	return err
}

// Close releases the prepared statement and the database handle.
func (ss *SQLiteStore) Close() error {
	return multierr.Combine(ss.insertPose.Close(), ss.db.Close())
}
