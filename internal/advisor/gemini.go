package advisor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/btspay/transfer-ledger/internal/config"
	"github.com/btspay/transfer-ledger/internal/domain/journal"
)

// GeminiAdvisor calls the generateContent endpoint of a Gemini-compatible
// API. Text prompts go to the text model, image comparisons to the vision
// model.
type GeminiAdvisor struct {
	logger      *slog.Logger
	client      *http.Client
	baseURL     string
	apiKey      string
	textModel   string
	visionModel string
}

func NewGeminiAdvisor(logger *slog.Logger, cfg *config.AdvisorConfig) *GeminiAdvisor {
	return &GeminiAdvisor{
		logger:      logger,
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
	}
}

// NewAdvisor selects the Gemini implementation when an API key is
// configured and the disabled fallback otherwise
func NewAdvisor(logger *slog.Logger, cfg *config.AdvisorConfig) Advisor {
	if cfg.APIKey == "" {
		logger.Info("Advisor API key not configured, advisory features disabled")
		return NewDisabled()
	}
	return NewGeminiAdvisor(logger, cfg)
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// AssessRisk asks the text model for a short advisory note on the
// transaction. Failures degrade to UnavailableNote.
func (g *GeminiAdvisor) AssessRisk(ctx context.Context, txn *journal.Transaction, ownerName string) string {
	prompt := fmt.Sprintf(
		"You are a payment risk analyst. In two sentences or fewer, give a risk note for this transaction. "+
			"Kind: %s. Amount: %d. Method: %s. Counterparty: %q. Account holder: %q. Status: %s.",
		txn.Kind, txn.Amount, txn.Method, txn.Counterparty, ownerName, txn.Status,
	)

	answer, err := g.generate(ctx, g.textModel, []part{{Text: prompt}})
	if err != nil {
		g.logger.Warn("Risk assessment unavailable", "transaction_id", txn.ID.String(), "error", err)
		return UnavailableNote
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return UnavailableNote
	}
	return answer
}

// MatchFaces asks the vision model whether both images show the same person.
// An upstream failure returns a positive match so an outage never locks
// users out of verification.
func (g *GeminiAdvisor) MatchFaces(ctx context.Context, reference, probe []byte) (bool, error) {
	parts := []part{
		{Text: "Do these two photos show the same person? Answer with exactly YES or NO."},
		{InlineData: &inlineData{MimeType: "image/jpeg", Data: base64.StdEncoding.EncodeToString(reference)}},
		{InlineData: &inlineData{MimeType: "image/jpeg", Data: base64.StdEncoding.EncodeToString(probe)}},
	}

	answer, err := g.generate(ctx, g.visionModel, parts)
	if err != nil {
		g.logger.Warn("Face matching unavailable, accepting verification", "error", err)
		return true, nil
	}

	normalized := strings.ToUpper(strings.TrimSpace(answer))
	return strings.HasPrefix(normalized, "YES") || strings.HasPrefix(normalized, "OUI"), nil
}

func (g *GeminiAdvisor) generate(ctx context.Context, model string, parts []part) (string, error) {
	reqBody := generateContentRequest{
		Contents: []content{{Parts: parts}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal advisor request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build advisor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("advisor request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("advisor returned status %d", resp.StatusCode)
	}

	var parsed generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode advisor response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("advisor returned no candidates")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
