package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func dsn(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const obligationColumns = `id, title, description, amount_cents, due_day, recurrence_type,
	start_date, end_date, is_active, category_id, credit_card_id, payment_method, reminder_days`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObligation(s rowScanner) (core.RecurringObligation, error) {
	var (
		o                           core.RecurringObligation
		recurrence, start, payment  string
		end, categoryID, creditCard sql.NullString
		active                      bool
	)
	err := s.Scan(&o.ID, &o.Title, &o.Description, &o.Amount.Cents, &o.DueDay, &recurrence,
		&start, &end, &active, &categoryID, &creditCard, &payment, &o.ReminderDays)
	if err != nil {
		return o, err
	}
	o.Recurrence = core.RecurrenceType(recurrence)
	o.PaymentMethod = core.PaymentMethod(payment)
	o.IsActive = active
	o.CategoryID = categoryID.String
	o.CreditCardID = creditCard.String

	if o.StartDate, err = core.ParseDate(start); err != nil {
		return o, fmt.Errorf("obligation %s start date: %w", o.ID, err)
	}
	if end.Valid && end.String != "" {
		if o.EndDate, err = core.ParseDate(end.String); err != nil {
			return o, fmt.Errorf("obligation %s end date: %w", o.ID, err)
		}
	}
	return o, nil
}

// ListObligations returns every obligation, active or not, oldest first.
func (r *SQLiteRepository) ListObligations(ctx context.Context) ([]core.RecurringObligation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+obligationColumns+` FROM obligations ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list obligations: %w", err)
	}
	defer rows.Close()

	out := []core.RecurringObligation{}
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			// one bad row must not hide the others
			slog.ErrorContext(ctx, "Failed to scan obligation row", "error", err)
			continue
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate obligations: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetObligation(ctx context.Context, id string) (core.RecurringObligation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+obligationColumns+` FROM obligations WHERE id = ?`, id)
	o, err := scanObligation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringObligation{}, fmt.Errorf("obligation %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.RecurringObligation{}, fmt.Errorf("get obligation %s: %w", id, err)
	}
	return o, nil
}

// CreateObligation inserts o, generating a UUID when o.ID is empty.
func (r *SQLiteRepository) CreateObligation(ctx context.Context, o core.RecurringObligation) (string, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO obligations (`+obligationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Title, o.Description, o.Amount.Cents, o.DueDay, string(o.Recurrence),
		o.StartDate.Format(dateLayout), nullDate(o.EndDate), o.IsActive,
		nullString(o.CategoryID), nullString(o.CreditCardID), string(o.PaymentMethod), o.ReminderDays)
	if err != nil {
		return "", fmt.Errorf("create obligation: %w", err)
	}

	slog.InfoContext(ctx, "Obligation saved to SQLite",
		"id", o.ID,
		"title", o.Title,
		"amount_cents", o.Amount.Cents,
		"due_day", o.DueDay,
		"recurrence", o.Recurrence)
	return o.ID, nil
}

func (r *SQLiteRepository) UpdateObligation(ctx context.Context, o core.RecurringObligation) error {
	res, err := r.db.ExecContext(ctx, `UPDATE obligations SET
		title = ?, description = ?, amount_cents = ?, due_day = ?, recurrence_type = ?,
		start_date = ?, end_date = ?, is_active = ?, category_id = ?, credit_card_id = ?,
		payment_method = ?, reminder_days = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		o.Title, o.Description, o.Amount.Cents, o.DueDay, string(o.Recurrence),
		o.StartDate.Format(dateLayout), nullDate(o.EndDate), o.IsActive,
		nullString(o.CategoryID), nullString(o.CreditCardID), string(o.PaymentMethod), o.ReminderDays,
		o.ID)
	if err != nil {
		return fmt.Errorf("update obligation %s: %w", o.ID, err)
	}
	return expectOneRow(res, "obligation "+o.ID)
}

func (r *SQLiteRepository) DeactivateObligation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE obligations SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate obligation %s: %w", id, err)
	}
	return expectOneRow(res, "obligation "+id)
}

// PaidKeys returns the paid instance keys whose due date is within [from, to].
func (r *SQLiteRepository) PaidKeys(ctx context.Context, from, to core.Date) (core.PaidSet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT instance_key FROM paid_instances WHERE due_date BETWEEN ? AND ?`,
		from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query paid keys: %w", err)
	}
	defer rows.Close()

	set := core.PaidSet{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan paid key: %w", err)
		}
		set[key] = struct{}{}
	}
	return set, rows.Err()
}

func (r *SQLiteRepository) PaidMarker(ctx context.Context, instanceKey string) (core.PaidMarker, error) {
	var (
		m             core.PaidMarker
		due, paidDate string
	)
	err := r.db.QueryRowContext(ctx, `SELECT instance_key, obligation_id, due_date, amount_cents, paid_date, notes
		FROM paid_instances WHERE instance_key = ?`, instanceKey).
		Scan(&m.InstanceKey, &m.ObligationID, &due, &m.Amount.Cents, &paidDate, &m.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PaidMarker{}, fmt.Errorf("paid marker %s: %w", instanceKey, core.ErrNotFound)
	}
	if err != nil {
		return core.PaidMarker{}, fmt.Errorf("get paid marker %s: %w", instanceKey, err)
	}
	if m.DueDate, err = core.ParseDate(due); err != nil {
		return core.PaidMarker{}, fmt.Errorf("paid marker %s due date: %w", instanceKey, err)
	}
	if m.PaidDate, err = core.ParseDate(paidDate); err != nil {
		return core.PaidMarker{}, fmt.Errorf("paid marker %s paid date: %w", instanceKey, err)
	}
	return m, nil
}

// MarkPaid stores the marker; marking an already paid instance updates it.
func (r *SQLiteRepository) MarkPaid(ctx context.Context, m core.PaidMarker) error {
	if err := m.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO paid_instances
		(instance_key, obligation_id, due_date, amount_cents, paid_date, notes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(instance_key) DO UPDATE SET
			amount_cents = excluded.amount_cents,
			paid_date = excluded.paid_date,
			notes = excluded.notes`,
		m.InstanceKey, m.ObligationID, m.DueDate.Format(dateLayout), m.Amount.Cents,
		m.PaidDate.Format(dateLayout), m.Notes)
	if err != nil {
		return fmt.Errorf("mark paid %s: %w", m.InstanceKey, err)
	}
	slog.InfoContext(ctx, "Instance marked paid", "instance_key", m.InstanceKey, "paid_date", m.PaidDate.String())
	return nil
}

func (r *SQLiteRepository) MarkUnpaid(ctx context.Context, instanceKey string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM paid_instances WHERE instance_key = ?`, instanceKey); err != nil {
		return fmt.Errorf("mark unpaid %s: %w", instanceKey, err)
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, color, icon, is_active FROM categories WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.Icon, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertCategory inserts or replaces c, generating an ID when empty.
func (r *SQLiteRepository) UpsertCategory(ctx context.Context, c core.Category) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO categories (id, name, description, color, icon, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description,
			color = excluded.color, icon = excluded.icon, is_active = excluded.is_active,
			updated_at = CURRENT_TIMESTAMP`,
		c.ID, c.Name, c.Description, c.Color, c.Icon, c.IsActive)
	if err != nil {
		return "", fmt.Errorf("upsert category: %w", err)
	}
	return c.ID, nil
}

func (r *SQLiteRepository) ListCreditCards(ctx context.Context) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, bank, last_four_digits, credit_limit_cents,
		closing_day, due_day, is_active FROM credit_cards WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list credit cards: %w", err)
	}
	defer rows.Close()

	out := []core.CreditCard{}
	for rows.Next() {
		var c core.CreditCard
		if err := rows.Scan(&c.ID, &c.Name, &c.Bank, &c.LastFourDigits, &c.CreditLimit.Cents,
			&c.ClosingDay, &c.DueDay, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan credit card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertCreditCard inserts or replaces c, generating an ID when empty.
func (r *SQLiteRepository) UpsertCreditCard(ctx context.Context, c core.CreditCard) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO credit_cards
		(id, name, bank, last_four_digits, credit_limit_cents, closing_day, due_day, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, bank = excluded.bank,
			last_four_digits = excluded.last_four_digits, credit_limit_cents = excluded.credit_limit_cents,
			closing_day = excluded.closing_day, due_day = excluded.due_day, is_active = excluded.is_active,
			updated_at = CURRENT_TIMESTAMP`,
		c.ID, c.Name, c.Bank, c.LastFourDigits, c.CreditLimit.Cents, c.ClosingDay, c.DueDay, c.IsActive)
	if err != nil {
		return "", fmt.Errorf("upsert credit card: %w", err)
	}
	return c.ID, nil
}

func (r *SQLiteRepository) ReminderSent(ctx context.Context, instanceKey, kind string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reminder_log WHERE instance_key = ? AND kind = ?`, instanceKey, kind).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check reminder %s/%s: %w", instanceKey, kind, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) RecordReminder(ctx context.Context, instanceKey, kind string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reminder_log (instance_key, kind, sent_at) VALUES (?, ?, ?)`,
		instanceKey, kind, at.UTC())
	if err != nil {
		return fmt.Errorf("record reminder %s/%s: %w", instanceKey, kind, err)
	}
	return nil
}

func expectOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Format(dateLayout), Valid: true}
}
