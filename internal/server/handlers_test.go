package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chronocop/chronocop/internal/config"
	"github.com/chronocop/chronocop/internal/database"
	"github.com/chronocop/chronocop/internal/services"
)

type stubNarrative struct {
	text   string
	tokens int
	err    error
}

func (f *stubNarrative) Generate(ctx context.Context, apiKey, prompt string, maxTokens int) (string, int, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	return f.text, f.tokens, nil
}

type fixture struct {
	handler   http.Handler
	settings  *services.SettingsService
	narrative *stubNarrative
}

func newTestServer(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewMemory()
	if err != nil {
		t.Fatalf("new memory database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	entries := services.NewEntryService(db)
	settings := services.NewSettingsService(db)
	stub := &stubNarrative{text: "A focused day.", tokens: 42}
	summaries := services.NewSummaryService(db, entries, settings, stub)
	narrative := services.NewNarrativeService(config.NarrativeConfig{Provider: config.ProviderOpenAI, Model: "gpt-4o-mini"})

	srv := NewServer(entries, settings, summaries, narrative)
	return &fixture{handler: srv.Handler(), settings: settings, narrative: stub}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func entryBody(date, start string) map[string]string {
	return map[string]string{
		"date":          date,
		"start_time":    start,
		"activity":      "standup",
		"type":          "planned",
		"energy_impact": "neutral",
	}
}

func TestEntryLifecycle(t *testing.T) {
	f := newTestServer(t)

	// Create
	w := f.do(t, http.MethodPost, "/api/entries", entryBody("2024-01-01", "09:00"))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	created := decode[database.TimeEntry](t, w)
	if created.EndTime != "09:30" {
		t.Errorf("end_time = %q, want 09:30", created.EndTime)
	}

	// Same slot again conflicts
	w = f.do(t, http.MethodPost, "/api/entries", entryBody("2024-01-01", "09:00"))
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", w.Code)
	}

	// Week listing contains it
	w = f.do(t, http.MethodGet, "/api/entries?week_start=2024-01-01", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	listed := decode[[]database.TimeEntry](t, w)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("list = %+v, want the created entry", listed)
	}

	// Delete
	w = f.do(t, http.MethodDelete, fmt.Sprintf("/api/entries/%d", created.ID), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}

	// Week is empty again (and renders as a JSON array, not null)
	w = f.do(t, http.MethodGet, "/api/entries?week_start=2024-01-01", nil)
	listed = decode[[]database.TimeEntry](t, w)
	if len(listed) != 0 {
		t.Fatalf("list after delete = %+v, want empty", listed)
	}
	if w.Body.String() == "null" {
		t.Error("empty list must encode as []")
	}
}

func TestCreateEntryValidation(t *testing.T) {
	f := newTestServer(t)

	body := entryBody("2024-01-01", "09:15")
	w := f.do(t, http.MethodPost, "/api/entries", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := decode[map[string]string](t, w)
	if resp["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestListEntriesBadWeekStart(t *testing.T) {
	f := newTestServer(t)

	w := f.do(t, http.MethodGet, "/api/entries?week_start=01-01-2024", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUpdateEntry(t *testing.T) {
	f := newTestServer(t)

	created := decode[database.TimeEntry](t, f.do(t, http.MethodPost, "/api/entries", entryBody("2024-01-01", "09:00")))

	body := entryBody("2024-01-01", "10:00")
	body["activity"] = "retro"
	w := f.do(t, http.MethodPut, fmt.Sprintf("/api/entries/%d", created.ID), body)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}
	updated := decode[database.TimeEntry](t, w)
	if updated.Activity != "retro" || updated.EndTime != "10:30" {
		t.Errorf("updated = %+v", updated)
	}

	// Unknown id
	w = f.do(t, http.MethodPut, "/api/entries/9999", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d, want 404", w.Code)
	}

	// Non-numeric id
	w = f.do(t, http.MethodDelete, "/api/entries/abc", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("bad id status = %d, want 404", w.Code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	f := newTestServer(t)

	w := f.do(t, http.MethodPut, "/api/settings/narrative_api_key", map[string]string{"value": "sk-test"})
	if w.Code != http.StatusOK {
		t.Fatalf("set status = %d", w.Code)
	}

	w = f.do(t, http.MethodGet, "/api/settings/narrative_api_key", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	setting := decode[database.Setting](t, w)
	if setting.Value != "sk-test" {
		t.Errorf("value = %q", setting.Value)
	}

	w = f.do(t, http.MethodGet, "/api/settings", nil)
	all := decode[map[string]string](t, w)
	if all["narrative_api_key"] != "sk-test" {
		t.Errorf("list = %v", all)
	}

	w = f.do(t, http.MethodDelete, "/api/settings/narrative_api_key", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	w = f.do(t, http.MethodGet, "/api/settings/narrative_api_key", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", w.Code)
	}
}

func TestSummaryEndpoints(t *testing.T) {
	f := newTestServer(t)
	ctx := context.Background()

	// No cached summary yet
	w := f.do(t, http.MethodGet, "/api/summaries/2024-01-01", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get status = %d, want 404", w.Code)
	}

	w = f.do(t, http.MethodGet, "/api/summaries/bad-date", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad date status = %d, want 400", w.Code)
	}

	// Credential missing
	f.do(t, http.MethodPost, "/api/entries", entryBody("2024-01-01", "09:00"))
	w = f.do(t, http.MethodPost, "/api/summaries/2024-01-01/generate", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("generate without key status = %d, want 400", w.Code)
	}

	if _, err := f.settings.Set(ctx, services.SettingNarrativeAPIKey, "sk-test"); err != nil {
		t.Fatal(err)
	}

	// No entries for the requested day
	w = f.do(t, http.MethodPost, "/api/summaries/2024-01-02/generate", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("generate without entries status = %d, want 404", w.Code)
	}

	// Happy path
	w = f.do(t, http.MethodPost, "/api/summaries/2024-01-01/generate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("generate status = %d, body %s", w.Code, w.Body.String())
	}
	summary := decode[database.DailySummary](t, w)
	if summary.Summary != "A focused day." {
		t.Errorf("summary = %q", summary.Summary)
	}

	w = f.do(t, http.MethodGet, "/api/summaries/2024-01-01", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get after generate status = %d", w.Code)
	}

	// Weekly variants key by Monday even when asked via a Wednesday.
	w = f.do(t, http.MethodPost, "/api/weekly-summaries/2024-01-03/generate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("weekly generate status = %d, body %s", w.Code, w.Body.String())
	}
	weekly := decode[database.WeeklySummary](t, w)
	if weekly.WeekStartDate != "2024-01-01" {
		t.Errorf("week_start_date = %q, want 2024-01-01", weekly.WeekStartDate)
	}

	w = f.do(t, http.MethodGet, "/api/weekly-summaries/2024-01-05", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("weekly get status = %d", w.Code)
	}
}

func TestGenerationFailureMapsToBadGateway(t *testing.T) {
	f := newTestServer(t)
	ctx := context.Background()

	if _, err := f.settings.Set(ctx, services.SettingNarrativeAPIKey, "sk-test"); err != nil {
		t.Fatal(err)
	}
	f.do(t, http.MethodPost, "/api/entries", entryBody("2024-01-01", "09:00"))

	f.narrative.err = fmt.Errorf("upstream timeout")
	w := f.do(t, http.MethodPost, "/api/summaries/2024-01-01/generate", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}

func TestTestNarrativeRequiresKey(t *testing.T) {
	f := newTestServer(t)

	w := f.do(t, http.MethodPost, "/api/test-narrative", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHealth(t *testing.T) {
	f := newTestServer(t)

	w := f.do(t, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
