package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/vfaivre/thumbdesk/internal/domain/errors"
	"github.com/vfaivre/thumbdesk/internal/domain/model"
	"github.com/vfaivre/thumbdesk/internal/domain/repository"
)

// Pool is the subset of pgxpool.Pool the storage uses; pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   Pool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type clientRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type paymentRepository struct {
	storage *Storage
}

type timeEntryRepository struct {
	storage *Storage
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (Pool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Clients() repository.ClientRepository {
	return &clientRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Payments() repository.PaymentRepository {
	return &paymentRepository{storage: s}
}

func (s *Storage) TimeEntries() repository.TimeEntryRepository {
	return &timeEntryRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS clients (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            email TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'client',
            client_id BIGINT REFERENCES clients(id) ON DELETE SET NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
            title TEXT NOT NULL,
            brief TEXT NOT NULL DEFAULT '',
            price_cents BIGINT NOT NULL,
            status TEXT NOT NULL,
            paid BOOLEAN NOT NULL DEFAULT FALSE,
            due_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS payments (
            id SERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
            method TEXT NOT NULL DEFAULT 'paypal',
            provider_order_id TEXT UNIQUE NOT NULL,
            provider_capture_id TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            amount_cents BIGINT NOT NULL,
            currency TEXT NOT NULL,
            orders_csv TEXT NOT NULL DEFAULT '',
            raw_payload TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS time_entries (
            id SERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            minutes INT NOT NULL,
            note TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_client ON orders(client_id, updated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_client ON payments(client_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_time_entries_order ON time_entries(order_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, email, passwordHash, role string, clientID *int64) (*model.User, error) {
	const query = `INSERT INTO users (email, password_hash, role, client_id) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, email, passwordHash, role, clientID).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	u.Email = email
	u.PasswordHash = passwordHash
	u.Role = role
	u.ClientID = clientID
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT id, email, password_hash, role, client_id, created_at FROM users WHERE email=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.ClientID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, email, password_hash, role, client_id, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.ClientID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// --- ClientRepository implementation ---

func (r *clientRepository) Create(ctx context.Context, name string) (*model.Client, error) {
	const query = `INSERT INTO clients (name) VALUES ($1) RETURNING id`
	var c model.Client
	if err := r.storage.pool.QueryRow(ctx, query, name).Scan(&c.ID); err != nil {
		return nil, err
	}
	c.Name = name
	return &c, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id int64) (*model.Client, error) {
	const query = `SELECT id, name FROM clients WHERE id=$1`
	var c model.Client
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// --- OrderRepository implementation ---

const orderColumns = `id, client_id, title, brief, price_cents, status, paid, due_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		id, clientID, priceCents int64
		title, brief, status     string
		paid                     bool
		dueAt                    *time.Time
		createdAt, updatedAt     time.Time
	)
	if err := row.Scan(&id, &clientID, &title, &brief, &priceCents, &status, &paid, &dueAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	parsed, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	return model.RestoreOrder(id, clientID, title, brief, priceCents, parsed, paid, dueAt, createdAt, updatedAt), nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	const query = `INSERT INTO orders (client_id, title, brief, price_cents, status, paid, due_at, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   RETURNING ` + orderColumns
	row := r.storage.pool.QueryRow(ctx, query,
		order.ClientID, order.Title, order.Brief, order.PriceCents,
		string(order.Status()), order.Paid(), order.DueAt, order.CreatedAt, order.UpdatedAt)
	return scanOrder(row)
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) ListByClient(ctx context.Context, clientID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE client_id=$1 ORDER BY updated_at DESC, id DESC`
	return r.list(ctx, query, clientID)
}

func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders ORDER BY updated_at DESC, id DESC`
	return r.list(ctx, query)
}

func (r *orderRepository) ListBillableUnpaid(ctx context.Context, clientID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE client_id=$1 AND paid=FALSE AND status IN ('DELIVERED', 'REVISION', 'FINISHED')
                   ORDER BY updated_at DESC, id DESC`
	return r.list(ctx, query, clientID)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, updatedAt time.Time) error {
	const query = `UPDATE orders SET status=$1, updated_at=$2 WHERE id=$3`
	tag, err := r.storage.pool.Exec(ctx, query, string(status), updatedAt, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, clientID int64, orderIDs []int64) (int, error) {
	// The WHERE clause repeats the settlement guard so that the read-then-
	// write stays against the same rows even when both confirmation paths
	// run concurrently.
	const query = `UPDATE orders SET paid=TRUE, updated_at=NOW()
                   WHERE id = ANY($1) AND client_id=$2 AND paid=FALSE
                     AND status IN ('DELIVERED', 'REVISION', 'FINISHED')`
	var updated int
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, orderIDs, clientID)
		if err != nil {
			return err
		}
		updated = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// --- PaymentRepository implementation ---

const paymentColumns = `id, user_id, client_id, method, provider_order_id, provider_capture_id, status, amount_cents, currency, orders_csv, raw_payload, created_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var (
		p         model.Payment
		ordersCSV string
	)
	err := row.Scan(&p.ID, &p.UserID, &p.ClientID, &p.Method, &p.ProviderOrderID, &p.ProviderCaptureID,
		&p.Status, &p.AmountCents, &p.Currency, &ordersCSV, &p.RawPayload, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.OrderIDs = model.SplitOrderIDs(ordersCSV)
	return &p, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	const query = `INSERT INTO payments (user_id, client_id, method, provider_order_id, provider_capture_id, status, amount_cents, currency, orders_csv, raw_payload, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
                   RETURNING id`
	err := r.storage.pool.QueryRow(ctx, query,
		payment.UserID, payment.ClientID, payment.Method, payment.ProviderOrderID, payment.ProviderCaptureID,
		payment.Status, payment.AmountCents, payment.Currency, model.JoinOrderIDs(payment.OrderIDs),
		payment.RawPayload, payment.CreatedAt,
	).Scan(&payment.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return payment, nil
}

func (r *paymentRepository) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*model.Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE provider_order_id=$1`
	payment, err := scanPayment(r.storage.pool.QueryRow(ctx, query, providerOrderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (r *paymentRepository) RecordConfirmation(ctx context.Context, paymentID int64, status, captureID, rawPayload string) error {
	// An empty capture id never erases one recorded earlier.
	const query = `UPDATE payments
                   SET status=$1,
                       provider_capture_id=COALESCE(NULLIF($2, ''), provider_capture_id),
                       raw_payload=$3
                   WHERE id=$4`
	tag, err := r.storage.pool.Exec(ctx, query, status, captureID, rawPayload, paymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *paymentRepository) ListByClient(ctx context.Context, clientID int64) ([]model.Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE client_id=$1 ORDER BY created_at DESC, id DESC`
	return r.listPayments(ctx, query, clientID)
}

func (r *paymentRepository) ListPending(ctx context.Context, before time.Time, limit int) ([]model.Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments
                   WHERE status <> 'COMPLETED' AND created_at < $1
                   ORDER BY created_at ASC
                   LIMIT $2`
	return r.listPayments(ctx, query, before, limit)
}

func (r *paymentRepository) listPayments(ctx context.Context, query string, args ...any) ([]model.Payment, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- TimeEntryRepository implementation ---

func (r *timeEntryRepository) Create(ctx context.Context, orderID int64, minutes int, note string) (*model.TimeEntry, error) {
	const query = `INSERT INTO time_entries (order_id, minutes, note) VALUES ($1, $2, $3) RETURNING id, created_at`
	entry := model.TimeEntry{OrderID: orderID, Minutes: minutes, Note: note}
	if err := r.storage.pool.QueryRow(ctx, query, orderID, minutes, note).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *timeEntryRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.TimeEntry, error) {
	const query = `SELECT id, order_id, minutes, note, created_at
                   FROM time_entries WHERE order_id=$1 ORDER BY created_at DESC, id DESC`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.TimeEntry
	for rows.Next() {
		var e model.TimeEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Minutes, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
