package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// --- Expense Formatter Model Prompts ---
const ExpenseFormatterSystemPrompt = "You are a bookkeeping assistant. Your task is to read a free-form expense note written by an employee and extract it into a structured expense record. You must output your response as a single valid JSON object."
const ExpenseFormatterUserPrompt = `Analyze the expense note provided below and extract a structured expense record.

Follow these rules precisely:
1.  Produce a single JSON object with exactly these keys:
    - "vendor": The name of the merchant or supplier. Empty string if not stated.
    - "description": A one-line description of what was purchased.
    - "amount": The total amount paid, as a number. 0 if no amount is stated.
    - "currency": The ISO 4217 currency code (e.g. "EUR", "USD"). Infer from symbols when possible; empty string if unknown.
    - "category": One of "Services", "Software", "Travel", "Office", "Equipment", "Marketing". Pick the closest match, defaulting to "Services".
    - "date": The expense date in YYYY-MM-DD format, or an empty string if not stated.
2.  Do not invent values. Prefer empty/zero values over guesses.
3.  The output MUST be only the JSON object, with no surrounding text.

Expense note:
`

// VertexClient holds the pre-configured generative model for the
// expense-formatter function.
type VertexClient struct {
	ExpenseFormatterModel *genai.GenerativeModel
	baseClient            *genai.Client
}

// NewVertexClient creates a new client holding the formatter model.
func NewVertexClient(ctx context.Context, projectID, region string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	formatterModel := baseClient.GenerativeModel("gemini-1.5-pro")
	formatterModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ExpenseFormatterSystemPrompt)},
	}
	formatterModel.GenerationConfig = genai.GenerationConfig{
		// Force JSON output. This is a critical setting for this model.
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.0), // Low temp for deterministic, structured output
	}
	formatterModel.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	return &VertexClient{
		ExpenseFormatterModel: formatterModel,
		baseClient:            baseClient,
	}, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
