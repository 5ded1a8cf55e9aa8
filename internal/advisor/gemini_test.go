package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btspay/transfer-ledger/internal/config"
	"github.com/btspay/transfer-ledger/internal/domain/journal"
	"github.com/btspay/transfer-ledger/internal/domain/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newAdvisorConfig(baseURL string) *config.AdvisorConfig {
	return &config.AdvisorConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		TextModel:   "text-model",
		VisionModel: "vision-model",
		Timeout:     2 * time.Second,
	}
}

func candidateResponse(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
}

func testTransfer(t *testing.T) *journal.Transaction {
	t.Helper()
	txn, err := journal.NewTransaction(uuid.New(), shared.TransactionKindTransfer, 75000, shared.PaymentMethodWesternUnion, "Fatou Sow")
	require.NoError(t, err)
	return txn
}

func TestGeminiAdvisor_AssessRisk(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("ReturnsModelAnswer", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path

			var req generateContentRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Contents, 1)
			assert.Contains(t, req.Contents[0].Parts[0].Text, "Fatou Sow")

			fmt.Fprint(w, candidateResponse("High amount for a first transfer, review the counterparty."))
		}))
		defer server.Close()

		advisor := NewGeminiAdvisor(logger, newAdvisorConfig(server.URL))
		note := advisor.AssessRisk(ctx, testTransfer(t), "Awa Diallo")

		assert.Equal(t, "High amount for a first transfer, review the counterparty.", note)
		assert.Equal(t, "/models/text-model:generateContent", gotPath)
	})

	t.Run("UpstreamErrorDegradesToUnavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		advisor := NewGeminiAdvisor(logger, newAdvisorConfig(server.URL))
		note := advisor.AssessRisk(ctx, testTransfer(t), "Awa Diallo")
		assert.Equal(t, UnavailableNote, note)
	})

	t.Run("EmptyAnswerDegradesToUnavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, candidateResponse("   "))
		}))
		defer server.Close()

		advisor := NewGeminiAdvisor(logger, newAdvisorConfig(server.URL))
		note := advisor.AssessRisk(ctx, testTransfer(t), "Awa Diallo")
		assert.Equal(t, UnavailableNote, note)
	})
}

func TestGeminiAdvisor_MatchFaces(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	reference := []byte("reference-photo")
	probe := []byte("probe-photo")

	t.Run("YesAnswerMatches", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, strings.HasPrefix(r.URL.Path, "/models/vision-model"))

			var req generateContentRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Contents[0].Parts, 3)
			assert.NotNil(t, req.Contents[0].Parts[1].InlineData)
			assert.NotNil(t, req.Contents[0].Parts[2].InlineData)

			fmt.Fprint(w, candidateResponse("YES, same person."))
		}))
		defer server.Close()

		advisor := NewGeminiAdvisor(logger, newAdvisorConfig(server.URL))
		match, err := advisor.MatchFaces(ctx, reference, probe)
		require.NoError(t, err)
		assert.True(t, match)
	})

	t.Run("NoAnswerRejects", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, candidateResponse("NO"))
		}))
		defer server.Close()

		advisor := NewGeminiAdvisor(logger, newAdvisorConfig(server.URL))
		match, err := advisor.MatchFaces(ctx, reference, probe)
		require.NoError(t, err)
		assert.False(t, match)
	})

	t.Run("OutageAcceptsVerification", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		advisor := NewGeminiAdvisor(logger, newAdvisorConfig(server.URL))
		match, err := advisor.MatchFaces(ctx, reference, probe)
		require.NoError(t, err)
		assert.True(t, match)
	})
}

func TestNewAdvisor(t *testing.T) {
	logger := newTestLogger()

	t.Run("NoAPIKeySelectsDisabled", func(t *testing.T) {
		advisor := NewAdvisor(logger, &config.AdvisorConfig{})
		assert.IsType(t, &Disabled{}, advisor)
	})

	t.Run("APIKeySelectsGemini", func(t *testing.T) {
		advisor := NewAdvisor(logger, newAdvisorConfig("http://localhost:1"))
		assert.IsType(t, &GeminiAdvisor{}, advisor)
	})
}

func TestDisabledAdvisor(t *testing.T) {
	ctx := context.Background()
	disabled := NewDisabled()

	assert.Equal(t, UnavailableNote, disabled.AssessRisk(ctx, testTransfer(t), "anyone"))

	match, err := disabled.MatchFaces(ctx, nil, nil)
	require.NoError(t, err)
	assert.True(t, match)
}
