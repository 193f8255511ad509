package sqlite

import (
	"context"
	"path/filepath"

	"github.com/iamwavecut/tool"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/iamwavecut/tgward/internal/db"
	"github.com/iamwavecut/tgward/resources"
)

type sqliteClient struct {
	db     *sqlx.DB
	logger *log.Entry
}

var _ db.Client = (*sqliteClient)(nil)

func NewClient(_ context.Context, dir, dbFile string, logger *log.Entry) (*sqliteClient, error) {
	dbx, err := sqlx.Open("sqlite", filepath.Join(dir, dbFile))
	if err != nil {
		return nil, errors.WithMessage(err, "open db")
	}
	dbx.SetMaxOpenConns(1)

	migrationsSource := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: resources.FS,
		Root:       "migrations",
	}
	n, err := migrate.Exec(dbx.DB, "sqlite3", migrationsSource, migrate.Up)
	if err != nil {
		return nil, errors.WithMessage(err, "migrate up")
	}
	if n > 0 {
		logger.Infof("applied %d migrations", n)
	}

	return &sqliteClient{db: dbx, logger: logger}, nil
}

func (c *sqliteClient) Close() error {
	return c.db.Close()
}

func (c *sqliteClient) UpsertOffenders(ctx context.Context, offenders []*db.Offender) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.WithMessage(err, "begin upsert")
	}
	defer tx.Rollback()

	query := `
		INSERT INTO offenders (user_id, first_name, last_name, username, offense_count, excommunicated, excom_count, relief_time, updated_at)
		VALUES (:user_id, :first_name, :last_name, :username, :offense_count, :excommunicated, :excom_count, :relief_time, :updated_at)
		ON CONFLICT(user_id) DO UPDATE SET
		first_name=excluded.first_name,
		last_name=excluded.last_name,
		username=excluded.username,
		offense_count=excluded.offense_count,
		excommunicated=excluded.excommunicated,
		excom_count=excluded.excom_count,
		relief_time=excluded.relief_time,
		updated_at=excluded.updated_at;
	`
	for _, offender := range offenders {
		if err := tool.Err(tx.NamedExecContext(ctx, query, offender)); err != nil {
			return errors.WithMessagef(err, "upsert offender %d", offender.UserID)
		}
	}
	return tx.Commit()
}

func (c *sqliteClient) GetOffenders(ctx context.Context) ([]*db.Offender, error) {
	var offenders []*db.Offender
	err := c.db.SelectContext(ctx, &offenders, `
		SELECT user_id, first_name, last_name, username, offense_count, excommunicated, excom_count, relief_time, updated_at
		FROM offenders`)
	return offenders, err
}

func (c *sqliteClient) RecordExcommunication(ctx context.Context, event *db.ExcommunicationEvent) error {
	return tool.Err(c.db.NamedExecContext(ctx, `
		INSERT INTO excommunication_events (id, user_id, excom_count, relief_time, created_at)
		VALUES (:id, :user_id, :excom_count, :relief_time, :created_at)`, event))
}

func (c *sqliteClient) GetExcommunicationEvents(ctx context.Context, userID int64) ([]*db.ExcommunicationEvent, error) {
	var events []*db.ExcommunicationEvent
	err := c.db.SelectContext(ctx, &events, `
		SELECT id, user_id, excom_count, relief_time, created_at
		FROM excommunication_events WHERE user_id = ? ORDER BY created_at`, userID)
	return events, err
}
