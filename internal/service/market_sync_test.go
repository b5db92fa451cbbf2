package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"traderjournal/internal/config"
	"traderjournal/internal/marketdata"
	"traderjournal/internal/models"
)

func quoteServer(t *testing.T, moves map[string]float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for sym, pct := range moves {
			if r.URL.Path == "/api/ticker/"+sym {
				fmt.Fprintf(w, `{"symbol":%q,"currentPrice":%v,"dayChangePercent":%v}`, sym, 100.0, pct)
				return
			}
		}
		http.NotFound(w, r)
	}))
}

func TestMarketSync_ClassifiesState(t *testing.T) {
	cases := []struct {
		move float64
		want string
	}{
		{1.1, models.MarketStateUp},
		{-0.9, models.MarketStateDown},
		{0.2, models.MarketStateFlat},
		{-0.25, models.MarketStateFlat},
	}
	for _, tc := range cases {
		srv := quoteServer(t, map[string]float64{"SPY": tc.move})
		repo := newStubRepo()
		svc := &MarketSyncService{
			Repo:   repo,
			Client: marketdata.NewClient(srv.Client(), srv.URL, nil),
			Config: config.MarketDataConfig{IndexTicker: "SPY"},
		}
		if err := svc.SyncOnce(context.Background()); err != nil {
			t.Fatalf("move=%v: %v", tc.move, err)
		}
		srv.Close()
		if len(repo.conditions) != 1 {
			t.Fatalf("conditions=%d want 1", len(repo.conditions))
		}
		if repo.conditions[0].MarketState != tc.want {
			t.Fatalf("move=%v state=%q want %q", tc.move, repo.conditions[0].MarketState, tc.want)
		}
	}
}

func TestMarketSync_RerunUpserts(t *testing.T) {
	srv := quoteServer(t, map[string]float64{"SPY": 0.5})
	defer srv.Close()
	repo := newStubRepo()
	svc := &MarketSyncService{
		Repo:   repo,
		Client: marketdata.NewClient(srv.Client(), srv.URL, nil),
		Config: config.MarketDataConfig{IndexTicker: "SPY"},
	}
	if err := svc.SyncOnce(context.Background()); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if err := svc.SyncOnce(context.Background()); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if len(repo.conditions) != 1 {
		t.Fatalf("conditions=%d want 1 after upsert", len(repo.conditions))
	}
}

func TestMarketSync_VolTickerFailureTolerated(t *testing.T) {
	srv := quoteServer(t, map[string]float64{"SPY": 0.8})
	defer srv.Close()
	repo := newStubRepo()
	svc := &MarketSyncService{
		Repo:   repo,
		Client: marketdata.NewClient(srv.Client(), srv.URL, nil),
		Config: config.MarketDataConfig{IndexTicker: "SPY", VolTicker: "^VIX"},
	}
	if err := svc.SyncOnce(context.Background()); err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(repo.conditions) != 1 || repo.conditions[0].VolatilityIndex != 0 {
		t.Fatalf("conditions=%+v", repo.conditions)
	}
}
