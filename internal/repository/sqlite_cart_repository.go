package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartapi/internal/domain"
	"github.com/nikolayk812/cartapi/internal/migrations"
	"github.com/nikolayk812/cartapi/internal/port"
	"golang.org/x/text/currency"
	_ "modernc.org/sqlite"
)

const (
	sqliteUpsertCart = `
INSERT INTO carts (id, user_id, status, currency, total_amount, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE
    SET user_id      = excluded.user_id,
        status       = excluded.status,
        currency     = excluded.currency,
        total_amount = excluded.total_amount,
        updated_at   = excluded.updated_at
RETURNING created_at, updated_at`

	sqliteGetCart = `
SELECT id, user_id, status, currency, total_amount, created_at, updated_at
FROM carts
WHERE id = ?`

	sqliteListCartItems = `
SELECT id, cart_id, product_id, product_name, price, quantity
FROM cart_items
WHERE cart_id = ?
ORDER BY position`

	sqliteInsertCartItem = `
INSERT INTO cart_items (id, cart_id, position, product_id, product_name, price, quantity)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	sqliteDeleteCartItems = `DELETE FROM cart_items WHERE cart_id = ?`

	sqliteDeleteCart = `DELETE FROM carts WHERE id = ?`
)

type sqliteCartRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteCart(sqlDB *sql.DB) (port.CartRepository, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("db is nil")
	}

	return &sqliteCartRepository{
		db:  sqlDB,
		now: time.Now,
	}, nil
}

// OpenSQLite opens the database at path (":memory:" for a private in-memory one) and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("path is empty")
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	// one writer; also keeps a :memory: database alive on a single connection
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	if err := MigrateSQLite(ctx, sqlDB); err != nil {
		return nil, errors.Join(err, sqlDB.Close())
	}

	return sqlDB, nil
}

func MigrateSQLite(ctx context.Context, sqlDB *sql.DB) error {
	scripts, err := migrations.SQLite()
	if err != nil {
		return fmt.Errorf("migrations.SQLite: %w", err)
	}

	for _, script := range scripts {
		if _, err := sqlDB.ExecContext(ctx, script); err != nil {
			return fmt.Errorf("db.ExecContext: %w", err)
		}
	}

	return nil
}

func (r *sqliteCartRepository) Save(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	if _, err := uuid.Parse(cart.ID); err != nil {
		return domain.Cart{}, fmt.Errorf("cart id[%s] is not valid: %w", cart.ID, err)
	}
	for _, item := range cart.Items {
		if _, err := uuid.Parse(item.ID); err != nil {
			return domain.Cart{}, fmt.Errorf("item id[%s] is not valid: %w", item.ID, err)
		}
	}
	if err := cart.CheckStorable(); err != nil {
		return domain.Cart{}, fmt.Errorf("cart.CheckStorable: %w", err)
	}

	now := r.now().UTC().UnixMicro()

	return withSQLTx(ctx, r.db, func(tx *sql.Tx) (domain.Cart, error) {
		var createdAt, updatedAt int64
		err := tx.QueryRowContext(ctx, sqliteUpsertCart,
			cart.ID,
			cart.UserID,
			cart.Status,
			cart.Currency.String(),
			cart.TotalAmount.String(),
			now,
			now,
		).Scan(&createdAt, &updatedAt)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("tx.QueryRowContext[upsert cart]: %w", err)
		}

		if _, err := tx.ExecContext(ctx, sqliteDeleteCartItems, cart.ID); err != nil {
			return domain.Cart{}, fmt.Errorf("tx.ExecContext[delete items]: %w", err)
		}

		for i, item := range cart.Items {
			_, err := tx.ExecContext(ctx, sqliteInsertCartItem,
				item.ID,
				cart.ID,
				i,
				item.ProductID,
				item.ProductName,
				item.Price.String(),
				item.Quantity,
			)
			if err != nil {
				return domain.Cart{}, fmt.Errorf("tx.ExecContext[insert item]: %w", err)
			}
		}

		saved := cart
		saved.CreatedAt = time.UnixMicro(createdAt).UTC()
		saved.UpdatedAt = time.UnixMicro(updatedAt).UTC()
		return saved, nil
	})
}

func (r *sqliteCartRepository) FindByID(ctx context.Context, cartID string) (domain.Cart, bool, error) {
	id, err := uuid.Parse(cartID)
	if err != nil {
		return domain.Cart{}, false, nil
	}
	cartID = id.String()

	var (
		cart                 domain.Cart
		cartCurrency         string
		createdAt, updatedAt int64
	)
	err = r.db.QueryRowContext(ctx, sqliteGetCart, cartID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.Status,
		&cartCurrency,
		&cart.TotalAmount,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, false, nil
	}
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("db.QueryRowContext[get cart]: %w", err)
	}

	parsedCurrency, err := currency.ParseISO(cartCurrency)
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("currency[%s] is not valid: %w", cartCurrency, err)
	}
	cart.Currency = parsedCurrency
	cart.CreatedAt = time.UnixMicro(createdAt).UTC()
	cart.UpdatedAt = time.UnixMicro(updatedAt).UTC()

	items, err := r.listItems(ctx, cartID)
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("r.listItems: %w", err)
	}
	cart.Items = items

	return cart, true, nil
}

func (r *sqliteCartRepository) listItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, sqliteListCartItems, cartID)
	if err != nil {
		return nil, fmt.Errorf("db.QueryContext: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.ProductName,
			&item.Price,
			&item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return items, nil
}

func (r *sqliteCartRepository) Delete(ctx context.Context, cartID string) (bool, error) {
	id, err := uuid.Parse(cartID)
	if err != nil {
		return false, nil
	}
	cartID = id.String()

	return withSQLTx(ctx, r.db, func(tx *sql.Tx) (bool, error) {
		if _, err := tx.ExecContext(ctx, sqliteDeleteCartItems, cartID); err != nil {
			return false, fmt.Errorf("tx.ExecContext[delete items]: %w", err)
		}

		res, err := tx.ExecContext(ctx, sqliteDeleteCart, cartID)
		if err != nil {
			return false, fmt.Errorf("tx.ExecContext[delete cart]: %w", err)
		}

		rowsAffected, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("res.RowsAffected: %w", err)
		}

		return rowsAffected > 0, nil
	})
}

func (r *sqliteCartRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db.PingContext: %w", err)
	}

	return nil
}
