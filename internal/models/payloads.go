package models

// These structs define the JSON payloads for HTTP requests and responses
// exchanged with the payment provider's webhook dispatcher and with internal
// manual callers.

// WebhookPayload is the union of the two accepted POST body shapes: a Wise
// "transfers#state-change" event and a manual {transferId, force} trigger.
// Classification of which shape applies happens in the services package.
type WebhookPayload struct {
	EventType string `json:"event_type,omitempty"`
	Data      struct {
		Resource struct {
			ID int64 `json:"id"`
		} `json:"resource"`
		CurrentState string `json:"current_state"`
	} `json:"data,omitempty"`

	// Manual trigger fields.
	TransferID int64 `json:"transferId,omitempty"`
	Force      bool  `json:"force,omitempty"`
}

// WebhookResponse is the JSON body returned for every POST outcome. StatusCode
// carries the HTTP status for the handler and is not serialized.
type WebhookResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	DocumentID string `json:"documentId,omitempty"`
	TransferID int64  `json:"transferId,omitempty"`
	ReceiptURL string `json:"receiptUrl,omitempty"`
	FileName   string `json:"fileName,omitempty"`

	StatusCode int `json:"-"`
}

// ExpenseFormatterRequest is the input for the expense-formatter function: a
// free-form expense note as typed by a user.
type ExpenseFormatterRequest struct {
	Text string `json:"text"`
}

// ExpenseFormatterResponse carries the structured expense extracted by the
// model.
type ExpenseFormatterResponse struct {
	Vendor      string  `json:"vendor"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Date        string  `json:"date,omitempty"`
}
