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

// Subscription statuses reported by the gateway.
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusPastDue   = "past_due"
	SubscriptionStatusCancelled = "cancelled"
)

// CreateSubscriptionRequest starts a recurring charge.
type CreateSubscriptionRequest struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required,len=3"`
	Interval string `json:"interval" validate:"required,oneof=daily weekly monthly yearly"`
	Buyer    Buyer  `json:"buyer" validate:"required"`
}

// Subscription is the gateway's view of a recurring charge.
type Subscription struct {
	ID           string    `json:"id"`
	Status       string    `json:"status"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	Interval     string    `json:"interval"`
	Buyer        *Buyer    `json:"buyer,omitempty"`
	NextChargeAt time.Time `json:"next_charge_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubscriptionList is a paged collection of subscriptions.
type SubscriptionList struct {
	Data  []Subscription `json:"data"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int            `json:"total"`
}

// SubscriptionsService manages recurring charges.
type SubscriptionsService struct {
	engine *pkghttp.Client
}

func (s *SubscriptionsService) decode(res *types.Result) (*Subscription, error) {
	var sub Subscription
	if err := res.Decode(&sub); err != nil {
		return nil, types.NewError(types.CodeParseError, "failed to decode subscription").WithErr(err)
	}
	return &sub, nil
}

// Create validates the request locally and starts a subscription.
func (s *SubscriptionsService) Create(ctx context.Context, req *CreateSubscriptionRequest) (*Subscription, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	gsm, err := validation.NormalizeGSM(req.Buyer.GSMNumber)
	if err != nil {
		return nil, err
	}

	payload := *req
	payload.Buyer.GSMNumber = gsm

	res, err := s.engine.Post(ctx, &pkghttp.Request{Path: "/subscriptions", Body: &payload})
	if err != nil {
		return nil, err
	}
	return s.decode(res)
}

// Get fetches a subscription by its identifier.
func (s *SubscriptionsService) Get(ctx context.Context, id string) (*Subscription, error) {
	if id == "" {
		return nil, types.NewValidationError("subscription id is required", nil)
	}

	res, err := s.engine.Get(ctx, &pkghttp.Request{Path: "/subscriptions/" + url.PathEscape(id)})
	if err != nil {
		return nil, err
	}
	return s.decode(res)
}

// Cancel stops a subscription at the end of the current period.
func (s *SubscriptionsService) Cancel(ctx context.Context, id string) (*Subscription, error) {
	if id == "" {
		return nil, types.NewValidationError("subscription id is required", nil)
	}

	res, err := s.engine.Post(ctx, &pkghttp.Request{Path: "/subscriptions/" + url.PathEscape(id) + "/cancel"})
	if err != nil {
		return nil, err
	}
	return s.decode(res)
}

// List pages through subscriptions.
func (s *SubscriptionsService) List(ctx context.Context, page, limit int) (*SubscriptionList, error) {
	query := map[string]string{}
	if page > 0 {
		query["page"] = strconv.Itoa(page)
	}
	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
	}

	res, err := s.engine.Get(ctx, &pkghttp.Request{Path: "/subscriptions", Query: query})
	if err != nil {
		return nil, err
	}

	var list SubscriptionList
	if err := res.Decode(&list); err != nil {
		return nil, types.NewError(types.CodeParseError, "failed to decode subscriptions").WithErr(err)
	}
	return &list, nil
}
