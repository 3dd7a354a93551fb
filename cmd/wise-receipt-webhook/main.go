package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/google/uuid"
	"github.com/hwinelin/backoffice-functions/internal/models"
	"github.com/hwinelin/backoffice-functions/internal/services"
)

var (
	webhookInstance *services.ReceiptWebhookFunction
	once            sync.Once
	initErr         error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the HTTP function with the framework.
	// "HandleWiseReceiptWebhook" is the entry point name configured in GCP.
	functions.HTTP("HandleWiseReceiptWebhook", handleWiseReceiptWebhook)
}

// main is required by the Go Functions Framework.
func main() {}

// handleWiseReceiptWebhook is the HTTP handler for the reconciliation
// pipeline. It owns request plumbing (CORS, liveness, JSON decode) and
// delegates every business decision to the services package.
func handleWiseReceiptWebhook(w http.ResponseWriter, r *http.Request) {
	writeCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		// Preflight: headers only.
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
		// Liveness probe, used by Wise for webhook URL validation.
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "wise-receipt-webhook"})
		return
	case http.MethodPost:
		// Handled below.
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		webhookInstance, initErr = services.NewReceiptWebhook(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		writeJSON(w, http.StatusInternalServerError, &models.WebhookResponse{
			Success: false,
			Error:   "failed to initialize service",
		})
		return
	}

	var payload models.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.Error("Could not decode request body", "error", err)
		writeJSON(w, http.StatusBadRequest, &models.WebhookResponse{
			Success: false,
			Error:   "could not parse JSON body",
		})
		return
	}

	trigger, terminal := services.ClassifyPayload(&payload)
	if terminal != nil {
		writeJSON(w, terminal.StatusCode, terminal)
		return
	}
	trigger.ExecutionID = uuid.NewString()

	res := webhookInstance.Process(r.Context(), trigger)
	writeJSON(w, res.StatusCode, res)
}

func writeCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
