package port

import (
	"context"

	"github.com/nikolayk812/cartapi/internal/domain"
)

// CartRepository persists cart aggregates, items included.
type CartRepository interface {
	// Save inserts or fully replaces the cart and its items.
	Save(ctx context.Context, cart domain.Cart) (domain.Cart, error)
	// FindByID reports false when no cart has the id.
	FindByID(ctx context.Context, cartID string) (domain.Cart, bool, error)
	// Delete removes the cart and all of its items, reporting whether a cart was removed.
	Delete(ctx context.Context, cartID string) (bool, error)
	Ping(ctx context.Context) error
}

type CartService interface {
	CreateCart(ctx context.Context, userID string) (domain.Cart, error)
	GetCart(ctx context.Context, cartID string) (domain.Cart, error)
	AddItemToCart(ctx context.Context, cartID string, item *domain.ItemInput) (domain.Cart, error)
	RemoveItemFromCart(ctx context.Context, cartID, itemID string) (domain.Cart, error)
	DeleteCart(ctx context.Context, cartID string) error
}
