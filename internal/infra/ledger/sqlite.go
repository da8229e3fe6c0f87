// Package ledger persists build records in a local SQLite database so cache
// behaviour and failures can be inspected after the fact.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"envforge/internal/domain/model"
	"envforge/internal/domain/repository"
	"envforge/pkg/log"
)

const buildSchema = `
CREATE TABLE IF NOT EXISTS build_v1 (
	id TEXT PRIMARY KEY,
	recipe_name TEXT NOT NULL,
	digest TEXT NOT NULL,
	image_tag TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_build_v1_recipe ON build_v1 (recipe_name, started_at DESC);
`

const stepSchema = `
CREATE TABLE IF NOT EXISTS build_step_v1 (
	build_id TEXT NOT NULL REFERENCES build_v1 (id),
	position INTEGER NOT NULL,
	kind TEXT NOT NULL,
	status TEXT NOT NULL,
	digest TEXT NOT NULL DEFAULT '',
	layer_tag TEXT NOT NULL DEFAULT '',
	cache_hit INTEGER NOT NULL DEFAULT 0,
	duration_ns INTEGER NOT NULL DEFAULT 0,
	output TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (build_id, position)
);
`

type buildRow struct {
	ID         string `db:"id"`
	RecipeName string `db:"recipe_name"`
	Digest     string `db:"digest"`
	ImageTag   string `db:"image_tag"`
	Status     string `db:"status"`
	Error      string `db:"error"`
	StartedAt  int64  `db:"started_at"`
	FinishedAt int64  `db:"finished_at"`
}

type stepRow struct {
	BuildID  string `db:"build_id"`
	Position int    `db:"position"`
	Kind     string `db:"kind"`
	Status   string `db:"status"`
	Digest   string `db:"digest"`
	LayerTag string `db:"layer_tag"`
	CacheHit bool   `db:"cache_hit"`
	Duration int64  `db:"duration_ns"`
	Output   string `db:"output"`
}

// sqliteLedger implements repository.BuildLedger on top of a local SQLite
// file.
type sqliteLedger struct {
	db *sqlx.DB
}

var _ repository.BuildLedger = (*sqliteLedger)(nil)

// NewSQLiteLedger opens (creating if necessary) the ledger database at the
// given path and applies the schema.
func NewSQLiteLedger(path string) (repository.BuildLedger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}

	for _, schema := range []string{buildSchema, stepSchema} {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply ledger schema: %w", err)
		}
	}

	log.Debug("[Ledger] database opened", "path", path)
	return &sqliteLedger{db: db}, nil
}

func (l *sqliteLedger) RecordBuild(build *model.Build) error {
	_, err := l.db.Exec(
		`INSERT INTO build_v1 (id, recipe_name, digest, image_tag, status, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		build.ID, build.RecipeName, build.Digest, build.ImageTag,
		string(build.Status), build.Error,
		build.StartedAt.UnixMilli(), finishedAtMillis(build.FinishedAt))
	if err != nil {
		return fmt.Errorf("record build: %w", err)
	}
	return nil
}

func (l *sqliteLedger) RecordStep(buildID string, step model.StepRecord) error {
	var position int
	if err := l.db.Get(&position, `SELECT COUNT(*) FROM build_step_v1 WHERE build_id = ?`, buildID); err != nil {
		return fmt.Errorf("record step: %w", err)
	}

	_, err := l.db.Exec(
		`INSERT INTO build_step_v1 (build_id, position, kind, status, digest, layer_tag, cache_hit, duration_ns, output)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		buildID, position, string(step.Kind), string(step.Status),
		step.Digest, step.LayerTag, step.CacheHit, int64(step.Duration), step.Output)
	if err != nil {
		return fmt.Errorf("record step: %w", err)
	}
	return nil
}

func (l *sqliteLedger) FinishBuild(build *model.Build) error {
	_, err := l.db.Exec(
		`UPDATE build_v1 SET status = ?, image_tag = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(build.Status), build.ImageTag, build.Error,
		finishedAtMillis(build.FinishedAt), build.ID)
	if err != nil {
		return fmt.Errorf("finish build: %w", err)
	}
	return nil
}

func (l *sqliteLedger) GetBuild(id string) (*model.Build, error) {
	var row buildRow
	err := l.db.Get(&row, `SELECT * FROM build_v1 WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get build: %w", err)
	}
	return l.hydrate(row)
}

func (l *sqliteLedger) LatestBuild(recipeName string) (*model.Build, error) {
	var row buildRow
	err := l.db.Get(&row,
		`SELECT * FROM build_v1 WHERE recipe_name = ? AND status = ? ORDER BY started_at DESC LIMIT 1`,
		recipeName, string(model.BuildStatusCompleted))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest build: %w", err)
	}
	return l.hydrate(row)
}

func (l *sqliteLedger) ListBuilds(recipeName string, limit int) ([]*model.Build, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []buildRow
	var err error
	if recipeName == "" {
		err = l.db.Select(&rows, `SELECT * FROM build_v1 ORDER BY started_at DESC LIMIT ?`, limit)
	} else {
		err = l.db.Select(&rows,
			`SELECT * FROM build_v1 WHERE recipe_name = ? ORDER BY started_at DESC LIMIT ?`,
			recipeName, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}

	builds := make([]*model.Build, 0, len(rows))
	for _, row := range rows {
		build, err := l.hydrate(row)
		if err != nil {
			return nil, err
		}
		builds = append(builds, build)
	}
	return builds, nil
}

func (l *sqliteLedger) Close() error {
	return l.db.Close()
}

// hydrate converts a build row to the domain model, attaching its steps in
// recorded order.
func (l *sqliteLedger) hydrate(row buildRow) (*model.Build, error) {
	var steps []stepRow
	err := l.db.Select(&steps,
		`SELECT * FROM build_step_v1 WHERE build_id = ? ORDER BY position ASC`, row.ID)
	if err != nil {
		return nil, fmt.Errorf("get build steps: %w", err)
	}

	build := &model.Build{
		ID:         row.ID,
		RecipeName: row.RecipeName,
		Digest:     row.Digest,
		ImageTag:   row.ImageTag,
		Status:     model.BuildStatus(row.Status),
		Error:      row.Error,
		StartedAt:  time.UnixMilli(row.StartedAt),
		Steps:      make([]model.StepRecord, 0, len(steps)),
	}
	if row.FinishedAt > 0 {
		build.FinishedAt = time.UnixMilli(row.FinishedAt)
	}

	for _, s := range steps {
		build.Steps = append(build.Steps, model.StepRecord{
			Kind:     model.StepKind(s.Kind),
			Status:   model.StepStatus(s.Status),
			Digest:   s.Digest,
			LayerTag: s.LayerTag,
			CacheHit: s.CacheHit,
			Duration: time.Duration(s.Duration),
			Output:   s.Output,
		})
	}
	return build, nil
}

func finishedAtMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
