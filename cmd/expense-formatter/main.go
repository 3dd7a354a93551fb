package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/hwinelin/backoffice-functions/internal/models"
	"github.com/hwinelin/backoffice-functions/internal/services"
)

var (
	formatterInstance *services.ExpenseFormatterFunction
	once              sync.Once
	initErr           error
)

func init() {
	// Register the HTTP function with the framework.
	// "HandleFormatExpense" is the entry point name configured in GCP.
	functions.HTTP("HandleFormatExpense", handleFormatExpense)
}

// main is required by the Go Functions Framework.
func main() {}

// handleFormatExpense is the HTTP handler for the expense-formatting proxy.
func handleFormatExpense(w http.ResponseWriter, r *http.Request) {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		formatterInstance, initErr = services.NewExpenseFormatter(context.Background())
	})
	if initErr != nil {
		log.Printf("CRITICAL: Expense formatter initialization failed: %v", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	var req models.ExpenseFormatterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("ERROR: Could not decode request body: %v", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}

	res, err := formatterInstance.Process(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrEmptyNote) {
			http.Error(w, "Bad Request: text must not be empty", http.StatusBadRequest)
			return
		}
		// The specific error is already logged inside the Process method.
		http.Error(w, "Internal Server Error: processing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Printf("ERROR: Failed to write response: %v", err)
		http.Error(w, "Internal Server Error: failed to encode response", http.StatusInternalServerError)
	}
}
