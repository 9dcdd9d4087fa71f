package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	"github.com/saiuppala9/ai-forex-trader/internal/repository"
	"github.com/saiuppala9/ai-forex-trader/internal/usecase"
	xlogger "github.com/saiuppala9/ai-forex-trader/pkg/logger"
)

type recordingArchive struct {
	called bool
	symbol string
	from   time.Time
	to     time.Time
	limit  int
}

func (a *recordingArchive) Store(context.Context, *models.ConsensusRecord) error { return nil }

func (a *recordingArchive) Query(_ context.Context, symbol string, from, to time.Time, limit int) ([]models.ConsensusRecord, error) {
	a.called = true
	a.symbol = symbol
	a.from = from
	a.to = to
	a.limit = limit
	return []models.ConsensusRecord{{Symbol: symbol, Signal: models.Buy}}, nil
}

func (a *recordingArchive) Health(context.Context) error { return nil }
func (a *recordingArchive) Close() error                 { return nil }

func newTestHandler(t *testing.T, archive *recordingArchive) *AnalysisEchoHandler {
	t.Helper()
	log, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	history := usecase.NewHistoryUseCase(repository.NewMemoryHistory(), archive)
	return NewAnalysisEchoHandler(log, nil, history, nil)
}

func doHistory(t *testing.T, h *AnalysisEchoHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.History(c); err != nil {
		t.Fatalf("history handler: %v", err)
	}
	return rec
}

func TestHistoryRouteRecent(t *testing.T) {
	archive := &recordingArchive{}
	h := newTestHandler(t, archive)

	rec := doHistory(t, h, "/api/history?symbol=EURUSD")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	if archive.called {
		t.Fatalf("recent read must not hit the archive")
	}
}

func TestHistoryRouteRangedHitsArchive(t *testing.T) {
	archive := &recordingArchive{}
	h := newTestHandler(t, archive)

	rec := doHistory(t, h,
		"/api/history?symbol=EURUSD&limit=50&from=2025-03-01T00:00:00Z&to=2025-03-02T00:00:00Z")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	if !archive.called {
		t.Fatalf("ranged read must hit the archive")
	}
	if archive.symbol != "EURUSD" || archive.limit != 50 {
		t.Fatalf("unexpected query args: %s %d", archive.symbol, archive.limit)
	}
	wantFrom := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	if !archive.from.Equal(wantFrom) || !archive.to.Equal(wantTo) {
		t.Fatalf("window not parsed: %v %v", archive.from, archive.to)
	}

	var body struct {
		Data struct {
			Total int64 `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body: %v", err)
	}
	if body.Data.Total != 1 {
		t.Fatalf("expected 1 archived row, got %d", body.Data.Total)
	}
}

func TestHistoryRouteOpenEndedRange(t *testing.T) {
	archive := &recordingArchive{}
	h := newTestHandler(t, archive)

	rec := doHistory(t, h, "/api/history?symbol=EURUSD&from=2025-03-01T00:00:00Z")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	if !archive.called {
		t.Fatalf("open-ended range must hit the archive")
	}
	if !archive.from.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("from not parsed: %v", archive.from)
	}
	if archive.to.IsZero() {
		t.Fatalf("missing to should default to now")
	}
}

func TestCacheTTLOverride(t *testing.T) {
	h := newTestHandler(t, &recordingArchive{})
	if h.cacheTTL != consensusCacheTTL {
		t.Fatalf("default ttl %v, want %v", h.cacheTTL, consensusCacheTTL)
	}
	h.SetCacheTTL(2 * time.Minute)
	if h.cacheTTL != 2*time.Minute {
		t.Fatalf("ttl override not applied: %v", h.cacheTTL)
	}
	h.SetCacheTTL(0)
	if h.cacheTTL != 2*time.Minute {
		t.Fatalf("non-positive ttl must keep current value: %v", h.cacheTTL)
	}
}
