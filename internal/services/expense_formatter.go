package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/hwinelin/backoffice-functions/internal/gcp"
	"github.com/hwinelin/backoffice-functions/internal/models"
)

// ErrEmptyNote is returned when the request carries no text to format.
var ErrEmptyNote = errors.New("expense note text must not be empty")

// ExpenseFormatterConfig holds configuration for the expense-formatter
// service.
type ExpenseFormatterConfig struct {
	ProjectID      string
	VertexAIRegion string
}

// ExpenseFormatterFunction holds dependencies for the formatting logic.
type ExpenseFormatterFunction struct {
	vertexClient *gcp.VertexClient
	config       ExpenseFormatterConfig
}

// NewExpenseFormatter creates a new ExpenseFormatterFunction instance.
func NewExpenseFormatter(ctx context.Context) (*ExpenseFormatterFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	config := ExpenseFormatterConfig{
		ProjectID:      projectID,
		VertexAIRegion: gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
	}

	vertexClient, err := gcp.NewVertexClient(ctx, config.ProjectID, config.VertexAIRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}

	return &ExpenseFormatterFunction{
		vertexClient: vertexClient,
		config:       config,
	}, nil
}

// Process turns a free-form expense note into a structured expense record.
func (f *ExpenseFormatterFunction) Process(ctx context.Context, req *models.ExpenseFormatterRequest) (*models.ExpenseFormatterResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyNote
	}

	logCtx := slog.With("noteLength", len(text))
	logCtx.Info("Formatting expense note.")

	model := f.vertexClient.ExpenseFormatterModel
	prompt := genai.Text(gcp.ExpenseFormatterUserPrompt + text)

	resp, err := model.GenerateContent(ctx, prompt)
	if err != nil {
		logCtx.Error("Call to Vertex AI for expense formatting failed", "error", err)
		return nil, fmt.Errorf("failed to generate expense record from gemini: %w", err)
	}

	jsonString := f.extractJSONContent(resp)
	if jsonString == "" {
		err := fmt.Errorf("gemini returned an empty response instead of JSON")
		logCtx.Error("Empty response from Gemini", "error", err)
		return nil, err
	}

	var expense models.ExpenseFormatterResponse
	if err := json.Unmarshal([]byte(jsonString), &expense); err != nil {
		logCtx.Error("Failed to unmarshal JSON response from Gemini", "error", err, "responseBody", jsonString)
		return nil, fmt.Errorf("failed to parse JSON from model: %w", err)
	}

	if expense.Category == "" {
		expense.Category = defaultLedgerCategory
	}

	logCtx.Info("Expense note formatted.", "vendor", expense.Vendor, "amount", expense.Amount, "category", expense.Category)
	return &expense, nil
}

// extractJSONContent robustly gets the raw text content from the model
// response.
func (f *ExpenseFormatterFunction) extractJSONContent(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	// The model is configured to return JSON, so we expect a single text part.
	if txt, ok := resp.Candidates[0].Content.Parts[0].(genai.Text); ok {
		// Clean potential markdown fences just in case
		cleanJSON := strings.TrimSpace(string(txt))
		cleanJSON = strings.TrimPrefix(cleanJSON, "```json")
		cleanJSON = strings.TrimSuffix(cleanJSON, "```")
		return strings.TrimSpace(cleanJSON)
	}
	return ""
}
