package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartapi/internal/domain"
	"github.com/nikolayk812/cartapi/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type cartService struct {
	repo     port.CartRepository
	currency currency.Unit
	log      *slog.Logger
}

// NewCart returns the cart service. New carts are priced in cur.
func NewCart(repo port.CartRepository, cur currency.Unit, log *slog.Logger) (port.CartService, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo is nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &cartService{
		repo:     repo,
		currency: cur,
		log:      log.With("component", "cart_service"),
	}, nil
}

func (s *cartService) CreateCart(ctx context.Context, userID string) (domain.Cart, error) {
	s.log.DebugContext(ctx, "creating cart", "user_id", userID)

	if isBlank(userID) {
		return domain.Cart{}, s.invalid(ctx, "user id is empty")
	}

	cart := domain.Cart{
		ID:          uuid.NewString(),
		UserID:      userID,
		Status:      domain.StatusActive,
		Currency:    s.currency,
		Items:       []domain.CartItem{},
		TotalAmount: decimal.Zero,
	}

	saved, err := s.repo.Save(ctx, cart)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("repo.Save: %w", err)
	}

	s.log.DebugContext(ctx, "cart created", "cart_id", saved.ID)
	return saved, nil
}

func (s *cartService) GetCart(ctx context.Context, cartID string) (domain.Cart, error) {
	s.log.DebugContext(ctx, "fetching cart", "cart_id", cartID)

	if isBlank(cartID) {
		return domain.Cart{}, s.invalid(ctx, "cart id is empty")
	}

	return s.findCart(ctx, cartID)
}

func (s *cartService) AddItemToCart(ctx context.Context, cartID string, in *domain.ItemInput) (domain.Cart, error) {
	s.log.DebugContext(ctx, "adding item", "cart_id", cartID)

	if isBlank(cartID) {
		return domain.Cart{}, s.invalid(ctx, "cart id is empty")
	}
	if in == nil {
		return domain.Cart{}, s.invalid(ctx, "cart item is nil")
	}
	if isBlank(in.ProductID) {
		return domain.Cart{}, s.invalid(ctx, "product id is empty")
	}
	if isBlank(in.ProductName) {
		return domain.Cart{}, s.invalid(ctx, "product name is empty")
	}
	if in.Price == nil || !domain.AmountFits(*in.Price) {
		return domain.Cart{}, s.invalid(ctx, "invalid item price")
	}
	if in.Quantity == nil || *in.Quantity < 1 || *in.Quantity > domain.MaxQuantity {
		return domain.Cart{}, s.invalid(ctx, "invalid item quantity")
	}

	cart, err := s.findCart(ctx, cartID)
	if err != nil {
		return domain.Cart{}, err
	}

	if in.Currency != "" {
		unit, err := currency.ParseISO(in.Currency)
		if err != nil {
			return domain.Cart{}, s.invalid(ctx, fmt.Sprintf("currency[%s] is not valid", in.Currency))
		}
		if unit != cart.Currency {
			return domain.Cart{}, s.invalid(ctx, fmt.Sprintf("currency[%s] does not match cart currency[%s]", unit, cart.Currency))
		}
	}

	cart.Items = append(cart.Items, domain.CartItem{
		ID:          uuid.NewString(),
		CartID:      cart.ID,
		ProductID:   in.ProductID,
		ProductName: in.ProductName,
		Price:       *in.Price,
		Quantity:    *in.Quantity,
	})
	cart.TotalAmount = cart.Total()
	if !domain.AmountFits(cart.TotalAmount) {
		return domain.Cart{}, s.invalid(ctx, fmt.Sprintf("cart total[%s] is out of range", cart.TotalAmount))
	}

	saved, err := s.repo.Save(ctx, cart)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("repo.Save: %w", err)
	}

	s.log.DebugContext(ctx, "item added", "cart_id", cartID, "total_amount", saved.TotalAmount.String())
	return saved, nil
}

func (s *cartService) RemoveItemFromCart(ctx context.Context, cartID, itemID string) (domain.Cart, error) {
	s.log.DebugContext(ctx, "removing item", "cart_id", cartID, "item_id", itemID)

	if isBlank(cartID) {
		return domain.Cart{}, s.invalid(ctx, "cart id is empty")
	}
	if isBlank(itemID) {
		return domain.Cart{}, s.invalid(ctx, "item id is empty")
	}

	cart, err := s.findCart(ctx, cartID)
	if err != nil {
		return domain.Cart{}, err
	}

	if !cart.RemoveItem(itemID) {
		s.log.WarnContext(ctx, "item not found", "cart_id", cartID, "item_id", itemID)
		return domain.Cart{}, fmt.Errorf("%w: item not found in cart with id: %s", domain.ErrNotFound, itemID)
	}
	cart.TotalAmount = cart.Total()

	saved, err := s.repo.Save(ctx, cart)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("repo.Save: %w", err)
	}

	s.log.DebugContext(ctx, "item removed", "cart_id", cartID, "total_amount", saved.TotalAmount.String())
	return saved, nil
}

func (s *cartService) DeleteCart(ctx context.Context, cartID string) error {
	s.log.DebugContext(ctx, "deleting cart", "cart_id", cartID)

	if isBlank(cartID) {
		return s.invalid(ctx, "cart id is empty")
	}

	if _, err := s.findCart(ctx, cartID); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, cartID)
	if err != nil {
		return fmt.Errorf("repo.Delete: %w", err)
	}
	// a concurrent delete won the race
	if !deleted {
		return s.cartNotFound(ctx, cartID)
	}

	s.log.DebugContext(ctx, "cart deleted", "cart_id", cartID)
	return nil
}

func (s *cartService) findCart(ctx context.Context, cartID string) (domain.Cart, error) {
	cart, found, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("repo.FindByID: %w", err)
	}
	if !found {
		return domain.Cart{}, s.cartNotFound(ctx, cartID)
	}

	return cart, nil
}

func (s *cartService) cartNotFound(ctx context.Context, cartID string) error {
	s.log.WarnContext(ctx, "cart not found", "cart_id", cartID)
	return fmt.Errorf("%w: cart not found with id: %s", domain.ErrNotFound, cartID)
}

func (s *cartService) invalid(ctx context.Context, msg string) error {
	s.log.WarnContext(ctx, "invalid argument", "reason", msg)
	return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, msg)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
