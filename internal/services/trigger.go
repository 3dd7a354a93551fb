package services

import (
	"fmt"
	"net/http"

	"github.com/hwinelin/backoffice-functions/internal/models"
)

// stateChangeEventType is the Wise event type announcing a transfer state
// transition.
const stateChangeEventType = "transfers#state-change"

// terminalTransferStates are the only states worth reconciling. Anything else
// (incoming_payment_waiting, processing, ...) is acknowledged and dropped.
var terminalTransferStates = map[string]bool{
	"outgoing_payment_sent": true,
	"funds_converted":       true,
	"bounced_back":          true,
}

// Trigger is a classified request to run the reconciliation pipeline for one
// transfer.
type Trigger struct {
	TransferID  int64
	Force       bool
	Source      string // "webhook" or "manual"
	ExecutionID string
}

// ClassifyPayload gates the pipeline. It returns either a trigger to process
// or a terminal response (ignored state, malformed payload) that the handler
// writes back as-is. Exactly one of the two return values is non-zero.
func ClassifyPayload(p *models.WebhookPayload) (Trigger, *models.WebhookResponse) {
	if p.EventType == stateChangeEventType {
		if !terminalTransferStates[p.Data.CurrentState] {
			return Trigger{}, &models.WebhookResponse{
				Success:    true,
				Message:    fmt.Sprintf("ignored transfer state %q", p.Data.CurrentState),
				StatusCode: http.StatusOK,
			}
		}
		if p.Data.Resource.ID == 0 {
			return Trigger{}, &models.WebhookResponse{
				Success:    false,
				Error:      "webhook event is missing data.resource.id",
				StatusCode: http.StatusBadRequest,
			}
		}
		return Trigger{TransferID: p.Data.Resource.ID, Source: "webhook"}, nil
	}

	if p.TransferID != 0 {
		return Trigger{TransferID: p.TransferID, Force: p.Force, Source: "manual"}, nil
	}

	return Trigger{}, &models.WebhookResponse{
		Success:    false,
		Error:      "unrecognized payload: expected a transfers#state-change event or a transferId",
		StatusCode: http.StatusBadRequest,
	}
}
