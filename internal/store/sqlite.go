package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/inspo/internal/domain"
	"github.com/pbaille/inspo/internal/filter"
)

//go:embed schema.sql
var schema string

var (
	ErrExportNotFound  = errors.New("export not found")
	ErrAmbiguousExport = errors.New("export id prefix matches more than one export")
)

const dateLayout = "2006-01-02"

// Store writes swipe-file exports to a SQLite database
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Export writes records into the database in one transaction as a new
// snapshot, along with the filters that produced them. Earlier exports keep
// their own rows.
func (s *Store) Export(records []domain.InspirationRecord, state *filter.State) (*domain.Export, error) {
	exp := &domain.Export{
		ID:          uuid.New().String(),
		Query:       state.Query,
		Filters:     state.Encode(),
		RecordCount: len(records),
		CreatedAt:   time.Now(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin export: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO exports (id, query, filters, record_count, created_at) VALUES (?, ?, ?, ?, ?)",
		exp.ID, exp.Query, exp.Filters, exp.RecordCount, exp.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert export: %w", err)
	}

	for i, r := range records {
		if err := insertRecord(tx, exp.ID, i, r); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit export: %w", err)
	}

	return exp, nil
}

func insertRecord(tx *sql.Tx, exportID string, position int, r domain.InspirationRecord) error {
	hooks, err := json.Marshal(nonNil(r.VisualHooks))
	if err != nil {
		return fmt.Errorf("encode visual hooks: %w", err)
	}
	notes, err := json.Marshal(nonNil(r.SwipeNotes))
	if err != nil {
		return fmt.Errorf("encode swipe notes: %w", err)
	}

	var postLabel, postedOn any
	if r.PostLabel != "" {
		postLabel = r.PostLabel
	}
	if r.PostedOn != nil {
		postedOn = r.PostedOn.Format(dateLayout)
	}

	_, err = tx.Exec(`
		INSERT INTO records (
			export_id, id, position, brand, brand_url, location, niche, brand_one_liner,
			post_url, platform, post_format, post_label, standout_idea,
			visual_hooks, swipe_notes, posted_on
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exportID, r.ID, position, r.Brand, r.BrandURL, r.Location, r.Niche, r.BrandOneLiner,
		r.PostURL, r.Platform, string(r.PostFormat), postLabel, r.StandoutIdea,
		string(hooks), string(notes), postedOn,
	)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", r.ID, err)
	}

	for i, tag := range r.Tags {
		if _, err := tx.Exec("INSERT OR IGNORE INTO tags (name) VALUES (?)", tag); err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}
		_, err := tx.Exec(
			"INSERT OR IGNORE INTO record_tags (export_id, record_id, tag_name, position) VALUES (?, ?, ?, ?)",
			exportID, r.ID, tag, i,
		)
		if err != nil {
			return fmt.Errorf("link record tag: %w", err)
		}
	}

	return nil
}

// ListRecords returns the records of one export in catalog order with their tags
func (s *Store) ListRecords(exportID string) ([]domain.InspirationRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, brand, brand_url, location, niche, brand_one_liner,
			post_url, platform, post_format, post_label, standout_idea,
			visual_hooks, swipe_notes, posted_on
		FROM records
		WHERE export_id = ?
		ORDER BY position`, exportID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []domain.InspirationRecord
	for rows.Next() {
		var (
			r                domain.InspirationRecord
			format           string
			label, postedOn  sql.NullString
			hooks, swipeNote string
		)
		err := rows.Scan(&r.ID, &r.Brand, &r.BrandURL, &r.Location, &r.Niche,
			&r.BrandOneLiner, &r.PostURL, &r.Platform, &format, &label,
			&r.StandoutIdea, &hooks, &swipeNote, &postedOn)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		r.PostFormat = domain.PostFormat(format)
		r.PostLabel = label.String
		if err := json.Unmarshal([]byte(hooks), &r.VisualHooks); err != nil {
			return nil, fmt.Errorf("decode visual hooks: %w", err)
		}
		if err := json.Unmarshal([]byte(swipeNote), &r.SwipeNotes); err != nil {
			return nil, fmt.Errorf("decode swipe notes: %w", err)
		}
		if postedOn.Valid {
			t, err := parseDate(postedOn.String)
			if err != nil {
				return nil, err
			}
			r.PostedOn = &t
		}

		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	rows.Close()

	for i := range records {
		tags, err := s.recordTags(exportID, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Tags = tags
	}

	return records, nil
}

func (s *Store) recordTags(exportID, recordID string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT tag_name FROM record_tags WHERE export_id = ? AND record_id = ? ORDER BY position",
		exportID, recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("get record tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}

// ListExports returns past exports, newest first. RecordCount always equals
// the number of rows ListRecords returns for that export.
func (s *Store) ListExports() ([]domain.Export, error) {
	rows, err := s.db.Query(
		"SELECT id, query, filters, record_count, created_at FROM exports ORDER BY created_at DESC, rowid DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var exports []domain.Export
	for rows.Next() {
		var e domain.Export
		if err := rows.Scan(&e.ID, &e.Query, &e.Filters, &e.RecordCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		exports = append(exports, e)
	}

	return exports, rows.Err()
}

// FindExport resolves a full export id or a unique prefix of one
func (s *Store) FindExport(prefix string) (*domain.Export, error) {
	rows, err := s.db.Query(
		"SELECT id, query, filters, record_count, created_at FROM exports WHERE id LIKE ? LIMIT 2",
		prefix+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("find export: %w", err)
	}
	defer rows.Close()

	var found []domain.Export
	for rows.Next() {
		var e domain.Export
		if err := rows.Scan(&e.ID, &e.Query, &e.Filters, &e.RecordCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		found = append(found, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find export: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrExportNotFound, prefix)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousExport, prefix)
	}
}

// ListTags returns every exported tag, sorted
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse posted_on %q: %w", s, err)
	}
	return t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
