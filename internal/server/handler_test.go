package server_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/cre-analyst/deal-memo-agent/internal/agent"
	"github.com/cre-analyst/deal-memo-agent/internal/server"
)

type mockMemoGenerator struct {
	GenerateFunc func(ctx context.Context, address string) (string, error)
}

func (m *mockMemoGenerator) GenerateDealMemo(ctx context.Context, address string) (string, error) {
	return m.GenerateFunc(ctx, address)
}

func newTestRouter(gen *mockMemoGenerator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	server.NewHandler(gen, zap.NewNop()).Routes(router)
	return router
}

func postBody(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeProperty(t *testing.T) {
	memoText := "## Executive Summary\nGreat property.\n## Property Overview\n..."

	tests := []struct {
		name           string
		body           string
		generateFunc   func(ctx context.Context, address string) (string, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "empty body",
			body:           "",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid JSON payload or empty request body."}`,
		},
		{
			name:           "malformed JSON",
			body:           `{"address":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid JSON payload or empty request body."}`,
		},
		{
			name:           "missing address key",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Missing 'address' in request payload."}`,
		},
		{
			name:           "empty address",
			body:           `{"address": ""}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Missing 'address' in request payload."}`,
		},
		{
			name: "successful memo",
			body: `{"address": "1 Infinite Loop, Cupertino, CA 95014"}`,
			generateFunc: func(ctx context.Context, address string) (string, error) {
				assert.Equal(t, "1 Infinite Loop, Cupertino, CA 95014", address)
				return memoText, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "empty memo from model",
			body: `{"address": "1 Infinite Loop, Cupertino, CA 95014"}`,
			generateFunc: func(ctx context.Context, address string) (string, error) {
				return "", agent.ErrEmptyMemo
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Agent failed to generate a comprehensive memo. Gemini's output was empty."}`,
		},
		{
			name: "unexpected failure",
			body: `{"address": "1 Infinite Loop, Cupertino, CA 95014"}`,
			generateFunc: func(ctx context.Context, address string) (string, error) {
				return "", errors.New("model invocation failed: quota exceeded")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"model invocation failed: quota exceeded"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&mockMemoGenerator{GenerateFunc: tt.generateFunc})
			rec := postBody(t, router, tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			}
		})
	}
}

func TestAnalyzeProperty_MemoPassedThrough(t *testing.T) {
	router := newTestRouter(&mockMemoGenerator{
		GenerateFunc: func(ctx context.Context, address string) (string, error) {
			return "memo with \"quotes\" and\nnewlines", nil
		},
	})
	rec := postBody(t, router, `{"address": "22 Acacia Avenue, London"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deal_memo":"memo with \"quotes\" and\nnewlines"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&mockMemoGenerator{})

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
