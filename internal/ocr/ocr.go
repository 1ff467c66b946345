// Package ocr extracts a vendor/amount/date triple from a receipt
// image. The ledger only consumes the extracted triple; the model call
// lives behind the Extractor interface so entry paths can be tested
// without network access.
package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/propbooks/cardledger/internal/domain"
)

// DefaultModelName is the Gemini model used for receipt extraction.
const DefaultModelName = "gemini-2.5-flash"

// Receipt is the extraction result used to pre-fill a transaction.
type Receipt struct {
	Vendor string          `json:"vendor"`
	Amount decimal.Decimal `json:"amount"`
	Date   domain.Date     `json:"date"`
}

// Extractor provides an interface for receipt extraction operations.
// This interface enables mocking and testing of OCR functionality.
type Extractor interface {
	// ExtractReceipt sends image bytes to a model and returns the
	// vendor, amount and date printed on the receipt.
	ExtractReceipt(ctx context.Context, image []byte, mimeType string) (*Receipt, error)
}

// GeminiExtractor is the concrete implementation of Extractor that uses
// Gemini.
type GeminiExtractor struct {
	model string
}

// NewGeminiExtractor creates an extractor using the given model name,
// or DefaultModelName when empty.
func NewGeminiExtractor(model string) *GeminiExtractor {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiExtractor{model: model}
}

// ExtractReceipt implements the Extractor interface.
func (e *GeminiExtractor) ExtractReceipt(ctx context.Context, image []byte, mimeType string) (*Receipt, error) {
	prompt :=
		"You are a receipt reader for an expense ledger.\n\n" +
			"Task:\n" +
			"- Read the attached receipt image.\n" +
			"- Output STRICT JSON only (no comments, no extra text).\n" +
			"- Output a single JSON object.\n\n" +
			"The object must have these fields:\n" +
			"- \"vendor\": string, the merchant name\n" +
			"- \"amount\": number, the receipt total, positive\n" +
			"- \"date\": string, ISO format \"YYYY-MM-DD\"\n\n" +
			"Return ONLY valid raw JSON.\n" +
			"Do NOT wrap the response in code fences.\n" +
			"Output must begin with \"{\" and end with \"}\".\n"

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("ExtractReceipt: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("ExtractReceipt: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("ExtractReceipt: empty response from model")
	}

	return decodeReceipt(rawText)
}

// decodeReceipt parses model output, tolerating Markdown fences the
// model was told not to emit.
func decodeReceipt(raw string) (*Receipt, error) {
	clean := cleanModelJSON(raw)

	var parsed struct {
		Vendor string  `json:"vendor"`
		Amount float64 `json:"amount"`
		Date   string  `json:"date"`
	}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("decodeReceipt: unmarshal JSON: %w\nraw response: %s", err, raw)
	}
	if strings.TrimSpace(parsed.Vendor) == "" {
		return nil, fmt.Errorf("decodeReceipt: missing vendor")
	}
	if parsed.Amount <= 0 {
		return nil, fmt.Errorf("decodeReceipt: non-positive amount %v", parsed.Amount)
	}

	date, err := domain.ParseDate(parsed.Date)
	if err != nil {
		return nil, fmt.Errorf("decodeReceipt: invalid date %q: %w", parsed.Date, err)
	}

	return &Receipt{
		Vendor: strings.TrimSpace(parsed.Vendor),
		Amount: decimal.NewFromFloat(parsed.Amount).Round(2),
		Date:   date,
	}, nil
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// If there's still junk around the JSON object, keep only from the
	// first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

var _ Extractor = (*GeminiExtractor)(nil)
