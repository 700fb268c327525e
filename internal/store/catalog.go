package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/orderdesk/internal/logging"
	"github.com/muurk/orderdesk/internal/order"
)

// MaxPageSize caps the limit of a product search
const MaxPageSize = 200

// Order is a stored order with its lines
type Order struct {
	ID        string       `json:"orderId"`
	Number    string       `json:"orderNumber"`
	ParentID  string       `json:"parentId"`
	Lines     []order.Line `json:"lines"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Event converts the order into an order.created feed message
func (o *Order) Event() order.Event {
	return order.Event{
		Type:        order.EventOrderCreated,
		OrderID:     o.ID,
		OrderNumber: o.Number,
		ParentID:    o.ParentID,
		Lines:       o.Lines,
		CreatedAt:   o.CreatedAt,
	}
}

// likePattern escapes term for use in a LIKE ... ESCAPE '\' clause
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// productFilter builds the shared WHERE clause of search and count
func productFilter(term, category string) (string, []any) {
	clauses := []string{"active = 1"}
	var args []any
	if term = strings.TrimSpace(term); term != "" {
		p := likePattern(term)
		clauses = append(clauses, `(name LIKE ? ESCAPE '\' OR code LIKE ? ESCAPE '\')`)
		args = append(args, p, p)
	}
	if category != "" {
		clauses = append(clauses, "family = ?")
		args = append(args, category)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// SearchProducts returns active products whose name or code contains term
// (case-insensitive), optionally restricted to one family, ordered by name
func (s *Store) SearchProducts(ctx context.Context, term, category string, offset, limit int) ([]order.Product, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	where, args := productFilter(term, category)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, code, family FROM products"+where+" ORDER BY name, id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products := []order.Product{}
	for rows.Next() {
		var p order.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.Category); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts counts the products SearchProducts would page through
func (s *Store) CountProducts(ctx context.Context, term, category string) (int, error) {
	where, args := productFilter(term, category)
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// ListCategories returns the distinct non-empty families of active products
func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT family FROM products WHERE active = 1 AND family <> '' ORDER BY family")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpsertProduct inserts or replaces a product
func (s *Store) UpsertProduct(ctx context.Context, p order.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, code, family) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, code = excluded.code, family = excluded.family`,
		p.ID, p.Name, p.Code, p.Category)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
	}
	return nil
}

// CreateOrder validates and stores an order in a single transaction. The
// parent record must exist, there must be at least one line, every product
// must exist and every quantity must be positive.
func (s *Store) CreateOrder(ctx context.Context, parentID string, lines []order.Line) (*Order, error) {
	if parentID == "" {
		return nil, fmt.Errorf("%w: parent record id is required", ErrValidation)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: an order needs at least one line", ErrValidation)
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity for product %s must be positive", ErrValidation, l.ProductID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM records WHERE id = ?", parentID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: parent record %s does not exist", ErrValidation, parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up parent record: %w", err)
	}

	for _, l := range lines {
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM products WHERE id = ?", l.ProductID).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: unknown product %s", ErrValidation, l.ProductID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up product: %w", err)
		}
	}

	var seq int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM orders").Scan(&seq); err != nil {
		return nil, fmt.Errorf("failed to allocate order number: %w", err)
	}

	o := &Order{
		ID:        uuid.NewString(),
		Number:    fmt.Sprintf("ORD-%06d", seq),
		ParentID:  parentID,
		Lines:     append([]order.Line(nil), lines...),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO orders (id, seq, number, parent_id, created_at) VALUES (?, ?, ?, ?, ?)",
		o.ID, seq, o.Number, o.ParentID, o.CreatedAt.Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}
	for i, l := range lines {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_lines (order_id, position, product_id, quantity) VALUES (?, ?, ?, ?)",
			o.ID, i, l.ProductID, l.Quantity); err != nil {
			return nil, fmt.Errorf("failed to insert order line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	logging.Info("Order stored",
		zap.String("order_number", o.Number),
		zap.String("parent_id", parentID),
		zap.Int("lines", len(lines)),
	)
	return o, nil
}

// GetOrder loads an order by number
func (s *Store) GetOrder(ctx context.Context, number string) (*Order, error) {
	o := &Order{Number: number}
	var created string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, parent_id, created_at FROM orders WHERE number = ?", number).
		Scan(&o.ID, &o.ParentID, &created)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s: %w", number, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	o.CreatedAt, _ = time.Parse(time.RFC3339, created)

	rows, err := s.db.QueryContext(ctx,
		"SELECT product_id, quantity FROM order_lines WHERE order_id = ? ORDER BY position", o.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l order.Line
		if err := rows.Scan(&l.ProductID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	return o, rows.Err()
}
