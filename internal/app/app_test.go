package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"myanalyst/pkg/domain"
	"myanalyst/pkg/store"
)

// fakeAnalysis is an httptest-backed analysis service with per-endpoint
// call counters and swappable handlers.
type fakeAnalysis struct {
	srv *httptest.Server

	reportCalls   int32
	questionCalls int32
	sttCalls      int32
	newsCalls     int32
	stockCalls    int32

	reportHandler   http.HandlerFunc
	questionHandler http.HandlerFunc
	sttHandler      http.HandlerFunc
	newsHandler     http.HandlerFunc
	stockHandler    http.HandlerFunc
}

func newFakeAnalysis(t *testing.T) *fakeAnalysis {
	t.Helper()
	f := &fakeAnalysis{}
	f.reportHandler = func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"report":                  "generated body",
			"generation_time_seconds": 1.5,
		})
	}
	f.questionHandler = func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"answer": "generated answer"})
	}
	f.sttHandler = func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"question": "transcribed question",
			"answer":   "generated answer",
		})
	}
	f.newsHandler = func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"rank": 1, "title": "headline", "link": "https://news.example/1"},
		})
	}
	f.stockHandler = func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"retrieved_at":  "2024-11-01 09:00",
			"company_name":  "셀트리온",
			"stock_code":    "068270",
			"current_price": "180,000",
		})
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/reports", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.reportCalls, 1)
		f.reportHandler(w, r)
	})
	mux.HandleFunc("/questions", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.questionCalls, 1)
		f.questionHandler(w, r)
	})
	mux.HandleFunc("/questions/stt", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.sttCalls, 1)
		f.sttHandler(w, r)
	})
	mux.HandleFunc("/news/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.newsCalls, 1)
		f.newsHandler(w, r)
	})
	mux.HandleFunc("/stocks/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.stockCalls, 1)
		f.stockHandler(w, r)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func newTestApp(t *testing.T, fake *fakeAnalysis) (*App, *store.MemoryStore) {
	t.Helper()
	memStore := store.NewMemoryStore()
	a, err := New(Config{
		Store:       memStore,
		AnalysisURL: fake.srv.URL,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, memStore
}

func mustRegister(t *testing.T, memStore *store.MemoryStore, id string) {
	t.Helper()
	if err := memStore.SaveUser(domain.User{ID: id, Password: "secret"}); err != nil {
		t.Fatalf("save user: %v", err)
	}
}

func mustCreateReport(t *testing.T, a *App, userID string) domain.Report {
	t.Helper()
	report, err := a.CreateReport(CreateReportInput{
		UserID:  userID,
		Title:   "T",
		Chapter: "overview\n\nvaluation",
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	return report
}
