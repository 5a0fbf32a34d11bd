package handler

import (
	"time"

	"github.com/nikolayk812/cartapi/internal/domain"
	"github.com/shopspring/decimal"
)

type CartResponse struct {
	ID          string             `json:"id"`
	UserID      string             `json:"userId"`
	Items       []CartItemResponse `json:"items"`
	TotalAmount float64            `json:"totalAmount"`
	Status      string             `json:"status"`
	Currency    string             `json:"currency"`
	CreatedAt   string             `json:"createdAt,omitempty"`
	UpdatedAt   string             `json:"updatedAt,omitempty"`
}

type CartItemResponse struct {
	ID          string  `json:"id"`
	CartID      string  `json:"cartId"`
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// AddItemRequest leaves price and quantity nil when the client omits them.
type AddItemRequest struct {
	ProductID   string           `json:"productId"`
	ProductName string           `json:"productName"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
	Currency    string           `json:"currency,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (r AddItemRequest) toDomain() *domain.ItemInput {
	return &domain.ItemInput{
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Currency:    r.Currency,
	}
}

func toCartResponse(cart domain.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItemResponse{
			ID:          item.ID,
			CartID:      item.CartID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price.InexactFloat64(),
			Quantity:    item.Quantity,
		})
	}

	resp := CartResponse{
		ID:          cart.ID,
		UserID:      cart.UserID,
		Items:       items,
		TotalAmount: cart.TotalAmount.InexactFloat64(),
		Status:      cart.Status,
		Currency:    cart.Currency.String(),
	}
	if !cart.CreatedAt.IsZero() {
		resp.CreatedAt = cart.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !cart.UpdatedAt.IsZero() {
		resp.UpdatedAt = cart.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}

	return resp
}
