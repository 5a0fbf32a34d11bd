package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartapi/internal/db"
	"github.com/nikolayk812/cartapi/internal/domain"
	"github.com/nikolayk812/cartapi/internal/port"
	"golang.org/x/text/currency"
)

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewCart(pool *pgxpool.Pool) (port.CartRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}, nil
}

// NewCartWithTx binds the repository to a caller-owned transaction; the caller commits or rolls back.
func NewCartWithTx(tx pgx.Tx) (port.CartRepository, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx is nil")
	}

	return &cartRepository{
		q:  db.New(tx),
		tx: tx,
	}, nil
}

func (r *cartRepository) Save(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	cartID, err := uuid.Parse(cart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("cart id[%s] is not valid: %w", cart.ID, err)
	}

	if err := cart.CheckStorable(); err != nil {
		return domain.Cart{}, fmt.Errorf("cart.CheckStorable: %w", err)
	}

	params, err := mapItemsToParams(cartID, cart.Items)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapItemsToParams: %w", err)
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Cart, error) {
		row, err := q.UpsertCart(ctx, db.UpsertCartParams{
			ID:          cartID,
			UserID:      cart.UserID,
			Status:      cart.Status,
			Currency:    cart.Currency.String(),
			TotalAmount: cart.TotalAmount,
		})
		if err != nil {
			return domain.Cart{}, fmt.Errorf("q.UpsertCart: %w", err)
		}

		if err := q.DeleteCartItems(ctx, cartID); err != nil {
			return domain.Cart{}, fmt.Errorf("q.DeleteCartItems: %w", err)
		}

		for _, p := range params {
			if err := q.InsertCartItem(ctx, p); err != nil {
				return domain.Cart{}, fmt.Errorf("q.InsertCartItem: %w", err)
			}
		}

		saved := cart
		saved.CreatedAt = row.CreatedAt
		saved.UpdatedAt = row.UpdatedAt
		return saved, nil
	})
}

func (r *cartRepository) FindByID(ctx context.Context, cartID string) (domain.Cart, bool, error) {
	id, err := uuid.Parse(cartID)
	if err != nil {
		// non-UUID ids are never issued
		return domain.Cart{}, false, nil
	}

	dbCart, err := r.q.GetCart(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{}, false, nil
	}
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("q.GetCart: %w", err)
	}

	dbItems, err := r.q.ListCartItems(ctx, id)
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("q.ListCartItems: %w", err)
	}

	cart, err := mapCartToDomain(dbCart, dbItems)
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("mapCartToDomain: %w", err)
	}

	return cart, true, nil
}

func (r *cartRepository) Delete(ctx context.Context, cartID string) (bool, error) {
	id, err := uuid.Parse(cartID)
	if err != nil {
		return false, nil
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (bool, error) {
		if err := q.DeleteCartItems(ctx, id); err != nil {
			return false, fmt.Errorf("q.DeleteCartItems: %w", err)
		}

		rowsAffected, err := q.DeleteCart(ctx, id)
		if err != nil {
			return false, fmt.Errorf("q.DeleteCart: %w", err)
		}

		return rowsAffected > 0, nil
	})
}

func (r *cartRepository) Ping(ctx context.Context) error {
	if r.pool == nil {
		if err := r.tx.Conn().Ping(ctx); err != nil {
			return fmt.Errorf("conn.Ping: %w", err)
		}
		return nil
	}

	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pool.Ping: %w", err)
	}

	return nil
}

func mapItemsToParams(cartID uuid.UUID, items []domain.CartItem) ([]db.InsertCartItemParams, error) {
	params := make([]db.InsertCartItemParams, 0, len(items))

	for i, item := range items {
		itemID, err := uuid.Parse(item.ID)
		if err != nil {
			return nil, fmt.Errorf("item id[%s] is not valid: %w", item.ID, err)
		}

		params = append(params, db.InsertCartItemParams{
			ID:          itemID,
			CartID:      cartID,
			Position:    int32(i),
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    int32(item.Quantity),
		})
	}

	return params, nil
}

func mapCartToDomain(dbCart db.Cart, rows []db.ListCartItemsRow) (domain.Cart, error) {
	parsedCurrency, err := currency.ParseISO(dbCart.Currency)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("currency[%s] is not valid: %w", dbCart.Currency, err)
	}

	items := make([]domain.CartItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.CartItem{
			ID:          row.ID.String(),
			CartID:      row.CartID.String(),
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Price:       row.Price,
			Quantity:    int(row.Quantity),
		})
	}

	return domain.Cart{
		ID:          dbCart.ID.String(),
		UserID:      dbCart.UserID,
		Status:      dbCart.Status,
		Currency:    parsedCurrency,
		Items:       items,
		TotalAmount: dbCart.TotalAmount,
		CreatedAt:   dbCart.CreatedAt,
		UpdatedAt:   dbCart.UpdatedAt,
	}, nil
}
