package payments

import (
	"context"
	"net/url"
	"time"

	pkghttp "github.com/mercetto/mercetto-go/pkg/http"
	"github.com/mercetto/mercetto-go/pkg/types"
	"github.com/mercetto/mercetto-go/pkg/validation"
)

// Refund statuses reported by the gateway.
const (
	RefundStatusPending   = "pending"
	RefundStatusCompleted = "completed"
	RefundStatusFailed    = "failed"
)

// RefundRequest asks for a full or partial refund of a paid order.
// Amount zero requests a full refund.
type RefundRequest struct {
	OrderID string `json:"order_id" validate:"required"`
	Amount  int64  `json:"amount,omitempty" validate:"gte=0"`
	Reason  string `json:"reason,omitempty"`
}

// Refund is the gateway's view of a refund.
type Refund struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RefundsService issues and inspects refunds.
type RefundsService struct {
	engine *pkghttp.Client
}

// Create issues a refund. A partial amount must be positive; zero means
// refund in full.
func (s *RefundsService) Create(ctx context.Context, req *RefundRequest) (*Refund, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.Amount > 0 {
		if err := validation.Amount(req.Amount); err != nil {
			return nil, err
		}
	}

	res, err := s.engine.Post(ctx, &pkghttp.Request{Path: "/refunds", Body: req})
	if err != nil {
		return nil, err
	}

	var refund Refund
	if err := res.Decode(&refund); err != nil {
		return nil, types.NewError(types.CodeParseError, "failed to decode refund").WithErr(err)
	}
	return &refund, nil
}

// Get fetches a refund by its identifier.
func (s *RefundsService) Get(ctx context.Context, id string) (*Refund, error) {
	if id == "" {
		return nil, types.NewValidationError("refund id is required", nil)
	}

	res, err := s.engine.Get(ctx, &pkghttp.Request{Path: "/refunds/" + url.PathEscape(id)})
	if err != nil {
		return nil, err
	}

	var refund Refund
	if err := res.Decode(&refund); err != nil {
		return nil, types.NewError(types.CodeParseError, "failed to decode refund").WithErr(err)
	}
	return &refund, nil
}
