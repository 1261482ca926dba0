package sectormap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSnapshot(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": {"foo": {"symbol": "FOO", "price": 2.5, "market_cap": 80000000, "change_24h": 20}},
			"sectors": {"DeFi": {"avg24h": 1.5, "best": {"symbol": "FOO", "value": 20}}},
			"sectorTokens": {"DeFi": ["foo"]}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/sheets", "secret", time.Second, time.Second)
	snap, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if gotKey != "secret" {
		t.Errorf("key param = %q, want secret", gotKey)
	}
	tok := snap.Tokens["foo"]
	if tok == nil || tok.Symbol != "FOO" || tok.Change24h == nil || *tok.Change24h != 20 {
		t.Fatalf("token = %+v", tok)
	}
	if snap.SectorOf("foo") != "DeFi" {
		t.Errorf("sector of foo = %q", snap.SectorOf("foo"))
	}
	if snap.Sectors["DeFi"].Best == nil || snap.Sectors["DeFi"].Best.Symbol != "FOO" {
		t.Errorf("best performer = %+v", snap.Sectors["DeFi"].Best)
	}
}

func TestSnapshotEnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/sheets", "", time.Second, time.Second)
	if _, err := c.Snapshot(context.Background()); err == nil {
		t.Fatal("expected error on success=false")
	}
}

func TestSnapshotTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL+"/sheets", "", time.Second, time.Second)
	if _, err := c.Snapshot(context.Background()); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestSiblingEndpoints(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/api/market-state":
			w.Write([]byte(`{"state": "bull", "btc24h": 3.1, "btcPrice": 64000}`))
		case "/api/momentum":
			w.Write([]byte(`{"tokens": [{"symbol": "FOO", "tier": "strong"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/sheets", "", time.Second, time.Second)

	st, err := c.MarketState(context.Background())
	if err != nil {
		t.Fatalf("market state: %v", err)
	}
	if st.State != "bull" || st.BTCPrice != 64000 {
		t.Errorf("state = %+v", st)
	}

	m, err := c.Momentum(context.Background())
	if err != nil {
		t.Fatalf("momentum: %v", err)
	}
	if len(m.Tokens) != 1 || m.Tokens[0].Tier != "strong" {
		t.Errorf("momentum = %+v", m)
	}

	want := []string{"/api/market-state", "/api/momentum"}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], p)
		}
	}
}
