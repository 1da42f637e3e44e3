package payments

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercetto/mercetto-go/internal/testutil"
	"github.com/mercetto/mercetto-go/pkg/types"
)

func TestRefundsCreateFull(t *testing.T) {
	server := testutil.NewScriptedServer(testutil.ScriptedResponse{
		StatusCode: 201,
		Body:       `{"id":"ref_1","order_id":"ord_1","amount":15000,"status":"pending"}`,
	})
	defer server.Close()
	client := newTestClient(t, server)

	refund, err := client.Refunds.Create(context.Background(), &RefundRequest{
		OrderID: "ord_1",
		Reason:  "customer request",
	})
	require.NoError(t, err)

	assert.Equal(t, "ref_1", refund.ID)
	assert.Equal(t, RefundStatusPending, refund.Status)

	request := server.Requests()[0]
	assert.Equal(t, "POST", request.Method)
	assert.Equal(t, "/refunds", request.URL.Path)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(server.Bodies()[0], &sent))
	assert.NotContains(t, sent, "amount", "a full refund omits the amount")
}

func TestRefundsCreatePartial(t *testing.T) {
	server := testutil.NewScriptedServer(testutil.ScriptedResponse{
		StatusCode: 201,
		Body:       `{"id":"ref_2","order_id":"ord_1","amount":5000,"status":"completed"}`,
	})
	defer server.Close()
	client := newTestClient(t, server)

	refund, err := client.Refunds.Create(context.Background(), &RefundRequest{
		OrderID: "ord_1",
		Amount:  5000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), refund.Amount)
}

func TestRefundsCreateMissingOrderID(t *testing.T) {
	server := testutil.NewScriptedServer(testutil.ScriptedResponse{StatusCode: 200, Body: `{}`})
	defer server.Close()
	client := newTestClient(t, server)

	_, err := client.Refunds.Create(context.Background(), &RefundRequest{Amount: 5000})
	require.Error(t, err)

	typed, ok := types.AsError(err)
	require.True(t, ok)
	assert.Contains(t, typed.Fields, "orderid")
	assert.Equal(t, 0, server.Count())
}

func TestRefundsGet(t *testing.T) {
	server := testutil.NewScriptedServer(testutil.ScriptedResponse{
		StatusCode: 200,
		Body:       `{"id":"ref_1","order_id":"ord_1","amount":15000,"status":"completed"}`,
	})
	defer server.Close()
	client := newTestClient(t, server)

	refund, err := client.Refunds.Get(context.Background(), "ref_1")
	require.NoError(t, err)
	assert.Equal(t, RefundStatusCompleted, refund.Status)
	assert.Equal(t, "/refunds/ref_1", server.Requests()[0].URL.Path)
}

func TestRefundsGetEmptyID(t *testing.T) {
	server := testutil.NewScriptedServer(testutil.ScriptedResponse{StatusCode: 200, Body: `{}`})
	defer server.Close()
	client := newTestClient(t, server)

	_, err := client.Refunds.Get(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, 0, server.Count())
}
