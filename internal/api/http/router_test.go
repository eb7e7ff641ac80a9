package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-engine/internal/api/http/handlers"
	"github.com/spec-kit/triage-engine/internal/auth"
	"github.com/spec-kit/triage-engine/internal/classify"
	"github.com/spec-kit/triage-engine/internal/config"
	"github.com/spec-kit/triage-engine/internal/observability"
	"github.com/spec-kit/triage-engine/internal/policy"
	"github.com/spec-kit/triage-engine/internal/repository"
	"github.com/spec-kit/triage-engine/internal/risk"
	"github.com/spec-kit/triage-engine/internal/service"
	"github.com/spec-kit/triage-engine/internal/similarity"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	corpusRepo := repository.NewMemoryCorpusRepository()
	ticketRepo := repository.NewMemoryTicketRepository()
	decisionRepo := repository.NewMemoryDecisionRepository()
	auditRepo := repository.NewMemoryAuditLogRepository()

	engineCfg := config.EngineConfig{
		AnalysisTimeoutMS:     2000,
		AuditMaxRetries:       3,
		TopK:                  5,
		AutoResolveConfidence: 80,
		AutoResolveSimilarity: 65,
		ClassifierFloor:       25,
	}
	triageService := service.NewTriageService(engineCfg, service.TriageDependencies{
		TicketRepo:   ticketRepo,
		CorpusRepo:   corpusRepo,
		DecisionRepo: decisionRepo,
		AuditRepo:    auditRepo,
		Classifier:   classify.NewKeywordClassifier(engineCfg.ClassifierFloor),
		Index:        similarity.NewKeywordIndex(corpusRepo),
		Assessor:     risk.NewAssessor(risk.DefaultParams()),
		Policy:       policy.New(engineCfg.AutoResolveConfidence, engineCfg.AutoResolveSimilarity),
		Logger:       zap.NewNop(),
	})

	verifier, err := auth.NewKeyVerifier("", "test-key", 4)
	if err != nil {
		t.Fatalf("NewKeyVerifier() error = %v", err)
	}
	tokens := auth.NewTokenManager("test-secret", 60)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("triage-engine", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(verifier, tokens),
		Triage:         handlers.NewTriageHandler(triageService),
		Analytics:      handlers.NewAnalyticsHandler(service.NewAnalyticsService(decisionRepo, ticketRepo)),
		AuthMiddleware: auth.NewMiddleware(tokens),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode body %q: %v", raw, err)
		}
	}
	return resp, decoded
}

func issueToken(t *testing.T, app *fiber.App, actor string) string {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/auth/token", "", map[string]string{
		"api_key": "test-key",
		"actor":   actor,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("token status = %d, body = %v", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	return data["token"].(string)
}

func TestRoutes_RequireAuth(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/tickets", "", map[string]string{"title": "x"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401, body = %v", resp.StatusCode, body)
	}
	errObj := body["error"].(map[string]any)
	if errObj["code"] != "UNAUTHORIZED" {
		t.Errorf("error code = %v, want UNAUTHORIZED", errObj["code"])
	}
}

func TestRoutes_SubmitAndFetchDecision(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	token := issueToken(t, app, "sarah.chen")

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/tickets", token, map[string]any{
		"id":          "TF-1001",
		"title":       "Cannot reset my Active Directory password",
		"description": "The self-service reset link never arrives in my email.",
		"department":  "Finance",
		"priority":    "medium",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status = %d, body = %v", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	if data["category"] != "Password Reset" {
		t.Errorf("category = %v, want Password Reset", data["category"])
	}
	// empty corpus means no similarity evidence, so the engine escalates
	if data["final_action"] != "escalate" {
		t.Errorf("final_action = %v, want escalate", data["final_action"])
	}
	if _, ok := data["decision_path"].([]any); !ok {
		t.Errorf("decision_path missing or malformed: %v", data["decision_path"])
	}

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/tickets/TF-1001/decision", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get decision status = %d, body = %v", resp.StatusCode, body)
	}
	data = body["data"].(map[string]any)
	if data["ticket_id"] != "TF-1001" {
		t.Errorf("ticket_id = %v, want TF-1001", data["ticket_id"])
	}
}

func TestRoutes_HumanActionAndAudit(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	token := issueToken(t, app, "mike.torres")

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/tickets", token, map[string]any{
		"id":          "TF-2002",
		"title":       "Strange ticket nobody understands",
		"description": "Something is off but hard to say what.",
		"department":  "Operations",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status = %d, body = %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/tickets/TF-2002/actions", token, map[string]string{
		"action":  "approve",
		"details": "Escalation was correct, resolved manually.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("action status = %d, body = %v", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	if data["status"] != "approved" {
		t.Errorf("status = %v, want approved", data["status"])
	}

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/tickets/TF-2002/audit", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("audit status = %d, body = %v", resp.StatusCode, body)
	}
	entries := body["data"].([]any)
	if len(entries) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(entries))
	}
	second := entries[1].(map[string]any)
	if second["action"] != "APPROVED" || second["actor"] != "mike.torres" {
		t.Errorf("second entry = %v/%v, want APPROVED/mike.torres", second["action"], second["actor"])
	}

	// the second approval hits a terminal status
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/tickets/TF-2002/actions", token, map[string]string{
		"action": "approve",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("repeat action status = %d, want 409, body = %v", resp.StatusCode, body)
	}
}

func TestRoutes_ValidationErrorShape(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	token := issueToken(t, app, "sarah.chen")

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/tickets", token, map[string]string{
		"title": "no description or department",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %v", resp.StatusCode, body)
	}
	errObj := body["error"].(map[string]any)
	if errObj["code"] != "VALIDATION_FAILED" {
		t.Errorf("error code = %v, want VALIDATION_FAILED", errObj["code"])
	}
}

func TestRoutes_AnalyticsSummary(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	token := issueToken(t, app, "sarah.chen")

	_, _ = doJSON(t, app, http.MethodPost, "/api/v1/tickets", token, map[string]any{
		"id":          "TF-3003",
		"title":       "VPN disconnects constantly",
		"description": "The vpn tunnel drops every few minutes.",
		"department":  "Engineering",
	})

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/analytics/summary", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary status = %d, body = %v", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	if data["total_tickets"].(float64) != 1 {
		t.Errorf("total_tickets = %v, want 1", data["total_tickets"])
	}
}

func TestRoutes_HealthLive(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	resp, body := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "alive" {
		t.Errorf("status field = %v, want alive", body["status"])
	}
}
