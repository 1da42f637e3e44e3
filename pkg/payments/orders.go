package payments

import (
	"context"
	"net/url"
	"strconv"
	"time"

	pkghttp "github.com/mercetto/mercetto-go/pkg/http"
	"github.com/mercetto/mercetto-go/pkg/types"
	"github.com/mercetto/mercetto-go/pkg/validation"
)

// Order statuses reported by the gateway.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
	OrderStatusFailed    = "failed"
	OrderStatusRefunded  = "refunded"
)

// Buyer identifies the paying customer.
type Buyer struct {
	Name      string `json:"name" validate:"required"`
	Surname   string `json:"surname" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	GSMNumber string `json:"gsm_number" validate:"required"`
}

// CreateOrderRequest is the payload for opening a new order. Amounts are
// in minor units of the currency.
type CreateOrderRequest struct {
	Amount        int64             `json:"amount" validate:"required,gt=0"`
	Currency      string            `json:"currency" validate:"required,len=3"`
	ReferenceCode string            `json:"reference_code,omitempty"`
	Description   string            `json:"description,omitempty"`
	CallbackURL   string            `json:"callback_url,omitempty" validate:"omitempty,url"`
	Installments  []int             `json:"installments,omitempty"`
	Buyer         Buyer             `json:"buyer" validate:"required"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Order is the gateway's view of a payment order. The wire names follow
// the current API contract; older snake/camel variants are not modeled.
type Order struct {
	ID            string            `json:"id"`
	ReferenceCode string            `json:"reference_code"`
	Status        string            `json:"status"`
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	CheckoutURL   string            `json:"checkout_url"`
	Installments  []int             `json:"installments,omitempty"`
	Buyer         *Buyer            `json:"buyer,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// OrderList is a paged collection of orders.
type OrderList struct {
	Data  []Order `json:"data"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
	Total int     `json:"total"`
}

// ListOrdersOptions filters and pages the order listing.
type ListOrdersOptions struct {
	Status string
	Page   int
	Limit  int
}

// OrdersService manages payment orders.
type OrdersService struct {
	engine *pkghttp.Client
}

// Create validates the request locally and opens a new order. Local
// failures are Validation errors raised before any transport attempt.
func (s *OrdersService) Create(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	gsm, err := validation.NormalizeGSM(req.Buyer.GSMNumber)
	if err != nil {
		return nil, err
	}

	payload := *req
	payload.Buyer.GSMNumber = gsm
	payload.Installments = validation.NormalizeInstallments(req.Installments)

	res, err := s.engine.Post(ctx, &pkghttp.Request{Path: "/orders", Body: &payload})
	if err != nil {
		return nil, err
	}

	var order Order
	if err := res.Decode(&order); err != nil {
		return nil, types.NewError(types.CodeParseError, "failed to decode order").WithErr(err)
	}
	return &order, nil
}

// Get fetches an order by its identifier.
func (s *OrdersService) Get(ctx context.Context, id string) (*Order, error) {
	if id == "" {
		return nil, types.NewValidationError("order id is required", nil)
	}

	res, err := s.engine.Get(ctx, &pkghttp.Request{Path: "/orders/" + url.PathEscape(id)})
	if err != nil {
		return nil, err
	}

	var order Order
	if err := res.Decode(&order); err != nil {
		return nil, types.NewError(types.CodeParseError, "failed to decode order").WithErr(err)
	}
	return &order, nil
}

// Cancel cancels a pending order.
func (s *OrdersService) Cancel(ctx context.Context, id string) (*Order, error) {
	if id == "" {
		return nil, types.NewValidationError("order id is required", nil)
	}

	res, err := s.engine.Post(ctx, &pkghttp.Request{Path: "/orders/" + url.PathEscape(id) + "/cancel"})
	if err != nil {
		return nil, err
	}

	var order Order
	if err := res.Decode(&order); err != nil {
		return nil, types.NewError(types.CodeParseError, "failed to decode order").WithErr(err)
	}
	return &order, nil
}

// List pages through orders, optionally filtered by status.
func (s *OrdersService) List(ctx context.Context, opts *ListOrdersOptions) (*OrderList, error) {
	query := map[string]string{}
	if opts != nil {
		query["status"] = opts.Status
		if opts.Page > 0 {
			query["page"] = strconv.Itoa(opts.Page)
		}
		if opts.Limit > 0 {
			query["limit"] = strconv.Itoa(opts.Limit)
		}
	}

	res, err := s.engine.Get(ctx, &pkghttp.Request{Path: "/orders", Query: query})
	if err != nil {
		return nil, err
	}

	var list OrderList
	if err := res.Decode(&list); err != nil {
		return nil, types.NewError(types.CodeParseError, "failed to decode order list").WithErr(err)
	}
	return &list, nil
}
