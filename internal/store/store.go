// Package store persists subscriptions and settings in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/pipeline"

	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrNotFound is returned when a subscription or setting does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrInvalidCycle is returned when renewing a subscription whose cycle
	// cannot be stepped.
	ErrInvalidCycle = errors.New("store: invalid subscription cycle")
)

// Store is the SQLite-backed subscription database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at dbPath.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const subscriptionColumns = "id, name, price, currency, cycle, next_due_date, notes, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(r rowScanner) (model.Subscription, error) {
	var (
		sub       model.Subscription
		cycle     string
		due       string
		notes     sql.NullString
		createdAt string
	)
	if err := r.Scan(&sub.ID, &sub.Name, &sub.Price, &sub.Currency, &cycle, &due, &notes, &createdAt); err != nil {
		return model.Subscription{}, err
	}

	sub.RawCycle = cycle
	sub.Cycle = model.ParseCycle(cycle)
	sub.Notes = notes.String

	d, err := model.ParseDate(due)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("subscription %d: %w", sub.ID, err)
	}
	sub.NextDueDate = d

	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		sub.CreatedAt = t
	} else if d, err := model.ParseDate(createdAt); err == nil {
		sub.CreatedAt = d.Time
	} else {
		return model.Subscription{}, fmt.Errorf("subscription %d: invalid created_at %q", sub.ID, createdAt)
	}
	return sub, nil
}

// ListSubscriptions returns every subscription ordered by next due date.
func (s *Store) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	return s.querySubscriptions(ctx, "next_due_date, id")
}

// Snapshot returns the current subscriptions for one report, in insertion
// order. Report groupings follow first occurrence in this order.
func (s *Store) Snapshot(ctx context.Context) ([]model.Subscription, error) {
	return s.querySubscriptions(ctx, "id")
}

func (s *Store) querySubscriptions(ctx context.Context, orderBy string) ([]model.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions ORDER BY "+orderBy)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	subs := make([]model.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// GetSubscription returns the subscription with the given id.
func (s *Store) GetSubscription(ctx context.Context, id int64) (model.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions WHERE id = ?", id)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Subscription{}, ErrNotFound
	}
	if err != nil {
		return model.Subscription{}, fmt.Errorf("getting subscription %d: %w", id, err)
	}
	return sub, nil
}

// CreateSubscription inserts sub and returns it with its id and creation
// time filled in. A zero CreatedAt is set to now.
func (s *Store) CreateSubscription(ctx context.Context, sub model.Subscription) (model.Subscription, error) {
	if err := sub.Validate(); err != nil {
		return model.Subscription{}, err
	}
	sub = normalize(sub, s.now())

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (name, price, currency, cycle, next_due_date, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.Name, sub.Price, sub.Currency, sub.Cycle.String(), sub.NextDueDate.String(),
		nullString(sub.Notes), sub.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("inserting subscription: %w", err)
	}
	sub.ID, err = res.LastInsertId()
	if err != nil {
		return model.Subscription{}, fmt.Errorf("reading new id: %w", err)
	}
	return sub, nil
}

// UpdateSubscription applies patch to the subscription with the given id.
func (s *Store) UpdateSubscription(ctx context.Context, id int64, patch model.SubscriptionPatch) (model.Subscription, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Subscription{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, "SELECT "+subscriptionColumns+" FROM subscriptions WHERE id = ?", id)
	current, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Subscription{}, ErrNotFound
	}
	if err != nil {
		return model.Subscription{}, fmt.Errorf("getting subscription %d: %w", id, err)
	}

	updated := patch.Apply(current)
	if err := updated.Validate(); err != nil {
		return model.Subscription{}, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE subscriptions SET name = ?, price = ?, currency = ?, cycle = ?, next_due_date = ?, notes = ?
		 WHERE id = ?`,
		updated.Name, updated.Price, updated.Currency, updated.Cycle.String(),
		updated.NextDueDate.String(), nullString(updated.Notes), id,
	)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("updating subscription %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return model.Subscription{}, err
	}
	return updated, nil
}

// DeleteSubscription removes the subscription with the given id.
func (s *Store) DeleteSubscription(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM subscriptions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting subscription %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RenewSubscription moves the next due date forward by one billing cycle.
func (s *Store) RenewSubscription(ctx context.Context, id int64) (model.Subscription, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Subscription{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, "SELECT "+subscriptionColumns+" FROM subscriptions WHERE id = ?", id)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Subscription{}, ErrNotFound
	}
	if err != nil {
		return model.Subscription{}, fmt.Errorf("getting subscription %d: %w", id, err)
	}

	next, ok := pipeline.NextDue(sub.NextDueDate, sub.Cycle)
	if !ok {
		return model.Subscription{}, fmt.Errorf("%w: %q", ErrInvalidCycle, sub.CycleLabel())
	}
	sub.NextDueDate = next

	if _, err := tx.ExecContext(ctx,
		"UPDATE subscriptions SET next_due_date = ? WHERE id = ?", next.String(), id); err != nil {
		return model.Subscription{}, fmt.Errorf("renewing subscription %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return model.Subscription{}, err
	}
	return sub, nil
}

// ImportSubscriptions inserts subs in one transaction. progress, if set, is
// called after each row.
func (s *Store) ImportSubscriptions(ctx context.Context, subs []model.Subscription, progress func(done int)) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO subscriptions (name, price, currency, cycle, next_due_date, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	now := s.now()
	for i, sub := range subs {
		if err := sub.Validate(); err != nil {
			return 0, fmt.Errorf("row %d (%s): %w", i+1, sub.Name, err)
		}
		sub = normalize(sub, now)
		if _, err := stmt.ExecContext(ctx,
			sub.Name, sub.Price, sub.Currency, sub.Cycle.String(), sub.NextDueDate.String(),
			nullString(sub.Notes), sub.CreatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return 0, fmt.Errorf("row %d (%s): %w", i+1, sub.Name, err)
		}
		if progress != nil {
			progress(i + 1)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(subs), nil
}

// Settings returns all settings ordered by key.
func (s *Store) Settings(ctx context.Context) ([]model.Setting, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.Setting, 0)
	for rows.Next() {
		var st model.Setting
		if err := rows.Scan(&st.Key, &st.Value); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// GetSetting returns the value stored under key.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting setting %q: %w", key, err)
	}
	return value, nil
}

// PutSetting creates or replaces one setting.
func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	return s.PutSettings(ctx, []model.Setting{{Key: key, Value: value}})
}

// PutSettings creates or replaces several settings atomically.
func (s *Store) PutSettings(ctx context.Context, settings []model.Setting) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, st := range settings {
		key := strings.TrimSpace(st.Key)
		if key == "" {
			return fmt.Errorf("%w: setting key is required", model.ErrInvalid)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, st.Value); err != nil {
			return fmt.Errorf("saving setting %q: %w", key, err)
		}
	}
	return tx.Commit()
}

// ReminderSent reports whether a reminder for this due date and lead time
// was already delivered.
func (s *Store) ReminderSent(ctx context.Context, subID int64, due model.Date, daysBefore int) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reminder_log WHERE subscription_id = ? AND due_date = ? AND days_before = ?",
		subID, due.String(), daysBefore).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking reminder log: %w", err)
	}
	return n > 0, nil
}

// MarkReminderSent records a delivered reminder.
func (s *Store) MarkReminderSent(ctx context.Context, subID int64, due model.Date, daysBefore int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO reminder_log (subscription_id, due_date, days_before, sent_at)
		 VALUES (?, ?, ?, ?)`,
		subID, due.String(), daysBefore, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording reminder: %w", err)
	}
	return nil
}

func normalize(sub model.Subscription, now time.Time) model.Subscription {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Currency = strings.ToUpper(strings.TrimSpace(sub.Currency))
	if sub.Currency == "" {
		sub.Currency = model.DefaultCurrency
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now.UTC()
	}
	sub.RawCycle = sub.Cycle.String()
	return sub
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
