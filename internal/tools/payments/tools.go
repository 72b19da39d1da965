package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/text/currency"

	"github.com/layrpay/layrpay-mcp/internal/api"
	"github.com/layrpay/layrpay-mcp/internal/tools"
)

// GetTools returns the five payment tools backed by client.
func GetTools(client *api.Client) []tools.Tool {
	return []tools.Tool{
		NewInfoTool(client),
		NewLimitsTool(client),
		NewValidateTransactionTool(client),
		NewCreateCardTool(client),
		NewCheckoutTool(client),
	}
}

// wrap converts an adapter Result into a tool outcome, annotating
// failures with the step that produced them.
func wrap(step string, result api.Result) (interface{}, error) {
	if !result.Success {
		return nil, tools.NewToolExecutionError(step, result.Err)
	}
	return result.Data, nil
}

// passthrough forwards raw tool arguments as the request body without
// local validation; the backend owns argument checking.
func passthrough(input json.RawMessage) any {
	if len(input) == 0 {
		return nil
	}
	return input
}

type InfoTool struct {
	client *api.Client
}

func NewInfoTool(client *api.Client) *InfoTool {
	return &InfoTool{client: client}
}

func (t *InfoTool) Name() string {
	return "layrpay_get_info"
}

func (t *InfoTool) Description() string {
	return `Get information about the LayrPay agent payment flow.

Returns the backend's description of the end-to-end flow: check spending
limits, validate the transaction, create a virtual card, then check out.
Call this first when unsure how the tools fit together.`
}

func (t *InfoTool) Title() string {
	return "Get LayrPay Info"
}

func (t *InfoTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *InfoTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)
}

func (t *InfoTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return wrap("Info Error", t.client.Request(ctx, http.MethodGet, "/info", nil, nil))
}

type LimitsTool struct {
	client *api.Client
}

func NewLimitsTool(client *api.Client) *LimitsTool {
	return &LimitsTool{client: client}
}

func (t *LimitsTool) Name() string {
	return "layrpay_get_limits"
}

func (t *LimitsTool) Description() string {
	return `Get the user's current spending limits.

Optionally converts the limits to a target currency. Use this before
validating a transaction to avoid submitting one that will be declined.`
}

func (t *LimitsTool) Title() string {
	return "Get Spending Limits"
}

func (t *LimitsTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *LimitsTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"currency": {
				"type": "string",
				"description": "Optional ISO 4217 currency code to convert limits into (e.g. EUR)"
			}
		},
		"required": []
	}`)
}

func (t *LimitsTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req struct {
		Currency string `json:"currency"`
	}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &req); err != nil {
			return nil, tools.NewToolExecutionError("Limits Error", fmt.Errorf("invalid arguments: %v", err))
		}
	}

	query := url.Values{}
	if req.Currency != "" {
		// Normalize through ISO 4217 so "eur" reaches the backend as "EUR".
		unit, err := currency.ParseISO(req.Currency)
		if err != nil {
			return nil, tools.NewToolExecutionError("Limits Error", fmt.Errorf("invalid currency code %q", req.Currency))
		}
		query.Set("currency", unit.String())
	}

	return wrap("Limits Error", t.client.Request(ctx, http.MethodGet, "/limits", nil, query))
}

type ValidateTransactionTool struct {
	client *api.Client
}

func NewValidateTransactionTool(client *api.Client) *ValidateTransactionTool {
	return &ValidateTransactionTool{client: client}
}

func (t *ValidateTransactionTool) Name() string {
	return "layrpay_validate_transaction"
}

func (t *ValidateTransactionTool) Description() string {
	return `Validate a transaction against the user's spending limits.

Transactions within the auto-approval threshold resolve immediately.
Transactions above it require human approval: this call then blocks
until the user approves or declines, or the wait times out (default
120 seconds). On approval the response carries a validation token to
pass to layrpay_create_virtual_card.`
}

func (t *ValidateTransactionTool) Title() string {
	return "Validate Transaction"
}

func (t *ValidateTransactionTool) Annotations() map[string]bool {
	return tools.NonIdempotentWriteAnnotations()
}

func (t *ValidateTransactionTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"amount": {
				"type": "number",
				"description": "Transaction amount"
			},
			"currency": {
				"type": "string",
				"description": "ISO 4217 currency code of the transaction"
			},
			"merchant": {
				"type": "object",
				"description": "Merchant details",
				"properties": {
					"name": {"type": "string"},
					"category": {"type": "string"},
					"url": {"type": "string"}
				}
			},
			"description": {
				"type": "string",
				"description": "What the transaction is for"
			}
		},
		"required": ["amount", "currency", "merchant"]
	}`)
}

func (t *ValidateTransactionTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return wrap("Validation Error", t.client.Validate(ctx, "/validate-transaction", passthrough(input)))
}

type CreateCardTool struct {
	client *api.Client
}

func NewCreateCardTool(client *api.Client) *CreateCardTool {
	return &CreateCardTool{client: client}
}

func (t *CreateCardTool) Name() string {
	return "layrpay_create_virtual_card"
}

func (t *CreateCardTool) Description() string {
	return `Create a single-use virtual card for an approved transaction.

Requires the validation token returned by layrpay_validate_transaction.
The backend rejects tokens that are expired, unknown, or already spent.`
}

func (t *CreateCardTool) Title() string {
	return "Create Virtual Card"
}

func (t *CreateCardTool) Annotations() map[string]bool {
	return tools.NonIdempotentWriteAnnotations()
}

func (t *CreateCardTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"validation_token": {
				"type": "string",
				"description": "Token from a successful transaction validation"
			}
		},
		"required": ["validation_token"]
	}`)
}

func (t *CreateCardTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return wrap("Card Creation Error", t.client.Request(ctx, http.MethodPost, "/create-virtual-card", passthrough(input), nil))
}

type CheckoutTool struct {
	client *api.Client
}

func NewCheckoutTool(client *api.Client) *CheckoutTool {
	return &CheckoutTool{client: client}
}

func (t *CheckoutTool) Name() string {
	return "layrpay_mock_checkout"
}

func (t *CheckoutTool) Description() string {
	return `Simulate a merchant checkout using a virtual card.

Test-environment stand-in for a real merchant charge: pass the card
details returned by layrpay_create_virtual_card to complete the flow.`
}

func (t *CheckoutTool) Title() string {
	return "Mock Checkout"
}

func (t *CheckoutTool) Annotations() map[string]bool {
	return tools.NonIdempotentWriteAnnotations()
}

func (t *CheckoutTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"card_number": {
				"type": "string",
				"description": "Virtual card number"
			},
			"expiry": {
				"type": "string",
				"description": "Card expiry (MM/YY)"
			},
			"cvv": {
				"type": "string",
				"description": "Card verification code"
			},
			"amount": {
				"type": "number",
				"description": "Charge amount"
			},
			"currency": {
				"type": "string",
				"description": "ISO 4217 currency code of the charge"
			}
		},
		"required": ["card_number", "expiry", "cvv", "amount"]
	}`)
}

func (t *CheckoutTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return wrap("Checkout Error", t.client.Request(ctx, http.MethodPost, "/mock-checkout", passthrough(input), nil))
}
