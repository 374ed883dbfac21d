package app

import (
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"myanalyst/pkg/marketcache"
	"myanalyst/pkg/store"
)

func newCachedApp(t *testing.T, fake *fakeAnalysis) *App {
	t.Helper()
	mr := miniredis.RunT(t)
	a, err := New(Config{
		Store:       store.NewMemoryStore(),
		AnalysisURL: fake.srv.URL,
		Cache:       marketcache.New(mr.Addr(), "", time.Minute),
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func TestCompanyNewsUsesCacheOnSecondRead(t *testing.T) {
	fake := newFakeAnalysis(t)
	a := newCachedApp(t, fake)

	first, err := a.CompanyNews("셀트리온")
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := a.CompanyNews("셀트리온")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if got := atomic.LoadInt32(&fake.newsCalls); got != 1 {
		t.Fatalf("analysis service called %d times, want 1", got)
	}
	if len(first) != 1 || len(second) != 1 || first[0].Title != second[0].Title {
		t.Fatalf("cached read diverged: first=%+v second=%+v", first, second)
	}
}

func TestCompanyStockUsesCacheOnSecondRead(t *testing.T) {
	fake := newFakeAnalysis(t)
	a := newCachedApp(t, fake)

	first, err := a.CompanyStock("셀트리온")
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := a.CompanyStock("셀트리온")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if got := atomic.LoadInt32(&fake.stockCalls); got != 1 {
		t.Fatalf("analysis service called %d times, want 1", got)
	}
	if first.CurrentPrice != "180,000" || second.CurrentPrice != first.CurrentPrice {
		t.Fatalf("cached read diverged: first=%+v second=%+v", first, second)
	}
}

func TestCompanyNewsWithoutCache(t *testing.T) {
	fake := newFakeAnalysis(t)
	a, _ := newTestApp(t, fake)

	for i := 0; i < 2; i++ {
		if _, err := a.CompanyNews("셀트리온"); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&fake.newsCalls); got != 2 {
		t.Fatalf("analysis service called %d times, want 2 without cache", got)
	}
}

func TestCompanyNewsUpstreamFailure(t *testing.T) {
	fake := newFakeAnalysis(t)
	fake.newsHandler = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"provider down"}`, http.StatusBadGateway)
	}
	a, _ := newTestApp(t, fake)

	_, err := a.CompanyNews("셀트리온")
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
}

func TestCompanyChartImageNeverCached(t *testing.T) {
	fake := newFakeAnalysis(t)
	var chartCalls int32
	fake.stockHandler = func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&chartCalls, 1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}
	a := newCachedApp(t, fake)

	for i := 0; i < 2; i++ {
		data, contentType, err := a.CompanyChartImage("셀트리온")
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if string(data) != "png-bytes" || contentType != "image/png" {
			t.Fatalf("chart = %q (%s)", data, contentType)
		}
	}
	if got := atomic.LoadInt32(&chartCalls); got != 2 {
		t.Fatalf("analysis service called %d times, want 2", got)
	}
}
