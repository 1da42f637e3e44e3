package payments

import (
	"context"
	"net/url"
	"time"

	pkghttp "github.com/mercetto/mercetto-go/pkg/http"
	"github.com/mercetto/mercetto-go/pkg/types"
	"github.com/mercetto/mercetto-go/pkg/validation"
)

// PaymentTermRequest creates or updates an installment plan. MinAmount
// and MaxAmount bound the order amounts (in minor units) the plan
// applies to; MaxAmount zero means unbounded.
type PaymentTermRequest struct {
	Name         string `json:"name" validate:"required"`
	Installments []int  `json:"installments" validate:"required,min=1"`
	MinAmount    int64  `json:"min_amount,omitempty" validate:"gte=0"`
	MaxAmount    int64  `json:"max_amount,omitempty" validate:"gte=0"`
	Active       bool   `json:"active"`
}

// PaymentTerm is an installment plan configured for the merchant.
type PaymentTerm struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Installments []int     `json:"installments"`
	MinAmount    int64     `json:"min_amount,omitempty"`
	MaxAmount    int64     `json:"max_amount,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PaymentTermList is the collection of configured plans.
type PaymentTermList struct {
	Data []PaymentTerm `json:"data"`
}

// PaymentTermsService manages installment plans.
type PaymentTermsService struct {
	engine *pkghttp.Client
}

func (s *PaymentTermsService) decode(res *types.Result) (*PaymentTerm, error) {
	var term PaymentTerm
	if err := res.Decode(&term); err != nil {
		return nil, types.NewError(types.CodeParseError, "failed to decode payment term").WithErr(err)
	}
	return &term, nil
}

// Create registers a new installment plan. The installment list is
// normalized (deduplicated, sorted, bounded) before it is sent.
func (s *PaymentTermsService) Create(ctx context.Context, req *PaymentTermRequest) (*PaymentTerm, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	payload := *req
	payload.Installments = validation.NormalizeInstallments(req.Installments)

	res, err := s.engine.Post(ctx, &pkghttp.Request{Path: "/payment-terms", Body: &payload})
	if err != nil {
		return nil, err
	}
	return s.decode(res)
}

// Get fetches a plan by its identifier.
func (s *PaymentTermsService) Get(ctx context.Context, id string) (*PaymentTerm, error) {
	if id == "" {
		return nil, types.NewValidationError("payment term id is required", nil)
	}

	res, err := s.engine.Get(ctx, &pkghttp.Request{Path: "/payment-terms/" + url.PathEscape(id)})
	if err != nil {
		return nil, err
	}
	return s.decode(res)
}

// Update replaces a plan's configuration.
func (s *PaymentTermsService) Update(ctx context.Context, id string, req *PaymentTermRequest) (*PaymentTerm, error) {
	if id == "" {
		return nil, types.NewValidationError("payment term id is required", nil)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	payload := *req
	payload.Installments = validation.NormalizeInstallments(req.Installments)

	res, err := s.engine.Put(ctx, &pkghttp.Request{Path: "/payment-terms/" + url.PathEscape(id), Body: &payload})
	if err != nil {
		return nil, err
	}
	return s.decode(res)
}

// Delete removes a plan.
func (s *PaymentTermsService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.NewValidationError("payment term id is required", nil)
	}

	_, err := s.engine.Delete(ctx, &pkghttp.Request{Path: "/payment-terms/" + url.PathEscape(id)})
	return err
}

// List returns every configured plan.
func (s *PaymentTermsService) List(ctx context.Context) (*PaymentTermList, error) {
	res, err := s.engine.Get(ctx, &pkghttp.Request{Path: "/payment-terms"})
	if err != nil {
		return nil, err
	}

	var list PaymentTermList
	if err := res.Decode(&list); err != nil {
		return nil, types.NewError(types.CodeParseError, "failed to decode payment terms").WithErr(err)
	}
	return &list, nil
}
