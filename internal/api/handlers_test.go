package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielpatrickdp/viewspace/internal/cluster"
	"github.com/danielpatrickdp/viewspace/internal/explore"
	"github.com/danielpatrickdp/viewspace/internal/ingest"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// #region helpers
func testBundle() *ingest.Bundle {
	b := &ingest.Bundle{Name: "cars"}
	b.Views = []viewspace.ViewSpace{
		{Dimensions: []string{"A", "B"}, Schema: viewspace.Schema{"mark": "bar"}},
		{Dimensions: []string{"A", "B"}, Schema: viewspace.Schema{"mark": "bar"}},
		{Dimensions: []string{"C", "D"}, Schema: viewspace.Schema{"mark": "line"}},
	}
	b.Subspaces = []viewspace.Subspace{
		{Dimensions: []string{"A", "B"}},
		{Dimensions: []string{"C", "D"}},
	}
	return b
}

func newTestServer(t *testing.T) (*httptest.Server, *explore.Store) {
	t.Helper()
	store := explore.NewStore(cluster.NewEngine(nil, nil, cluster.DefaultConfig()), nil, explore.Options{})
	b := testBundle()
	store.Init(b, b.Catalog(), b.Subspaces)

	srv := httptest.NewServer(NewRouter(NewHandler(store, 10, false), []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, store
}

func do(t *testing.T, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	out := map[string]interface{}{}
	if resp.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, out
}

// #endregion helpers

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, _ := do(t, "GET", srv.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestPaging(t *testing.T) {
	srv, _ := newTestServer(t)

	_, body := do(t, "POST", srv.URL+"/api/page/last", nil)
	if body["page"].(float64) != 2 {
		t.Errorf("last from 0 should wrap to 2, got %v", body["page"])
	}
	_, body = do(t, "POST", srv.URL+"/api/page/next", nil)
	if body["page"].(float64) != 0 {
		t.Errorf("next from 2 should wrap to 0, got %v", body["page"])
	}
	_, body = do(t, "POST", srv.URL+"/api/page/7", nil)
	if body["page"].(float64) != 1 || body["total"].(float64) != 3 {
		t.Errorf("expected page 1 of 3, got %v", body)
	}

	resp, _ := do(t, "POST", srv.URL+"/api/page/abc", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric page, got %d", resp.StatusCode)
	}
}

func TestCluster_AppliesAndReportsStatus(t *testing.T) {
	srv, store := newTestServer(t)

	resp, body := do(t, "POST", srv.URL+"/api/cluster", map[string]interface{}{"max_groups": 5})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
	}
	report := body["report"].(map[string]interface{})
	if report["applied"] != true || report["groups"].(float64) != 2 {
		t.Errorf("unexpected report: %v", report)
	}
	if got := len(store.Snapshot().ViewSpaces); got != 2 {
		t.Errorf("expected 2 pages after clustering, got %d", got)
	}

	resp, _ = do(t, "POST", srv.URL+"/api/cluster", map[string]interface{}{"max_groups": -1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for negative max_groups, got %d", resp.StatusCode)
	}
}

func TestCluster_RemoteWithoutServiceFallsBack(t *testing.T) {
	srv, _ := newTestServer(t)

	_, body := do(t, "POST", srv.URL+"/api/cluster", map[string]interface{}{"use_remote": true})
	status := body["status"].(map[string]interface{})
	if status["code"] != string(explore.StatusFallback) {
		t.Errorf("expected fallback advisory, got %v", status)
	}
}

func TestLikes(t *testing.T) {
	srv, store := newTestServer(t)

	_, body := do(t, "POST", srv.URL+"/api/likes/2", nil)
	if body["liked"] != true {
		t.Fatalf("expected liked, got %v", body)
	}
	if e := store.Likes()[0]; e.Schema["mark"] != "line" {
		t.Errorf("expected page schema snapshot, got %v", e.Schema)
	}

	_, body = do(t, "POST", srv.URL+"/api/likes/2", nil)
	if body["liked"] != false {
		t.Fatalf("second toggle should unlike, got %v", body)
	}

	do(t, "POST", srv.URL+"/api/likes/0", map[string]interface{}{"schema": map[string]interface{}{"mark": "area"}})
	_, body = do(t, "GET", srv.URL+"/api/likes", nil)
	list := body["likes"].([]interface{})
	if len(list) != 1 {
		t.Fatalf("expected 1 like, got %v", list)
	}
	schema := list[0].(map[string]interface{})["schema"].(map[string]interface{})
	if schema["mark"] != "area" {
		t.Errorf("expected body schema, got %v", schema)
	}
}

func TestFocusAndAssociations(t *testing.T) {
	srv, store := newTestServer(t)
	if _, err := store.ClusterMeasures(context.Background(), 0, false); err != nil {
		t.Fatalf("ClusterMeasures: %v", err)
	}

	resp, _ := do(t, "POST", srv.URL+"/api/focus/99", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown focus, got %d", resp.StatusCode)
	}

	do(t, "POST", srv.URL+"/api/associations/open", nil)
	_, body := do(t, "GET", srv.URL+"/api/associations", nil)
	if body["open"] != true {
		t.Errorf("expected open panel, got %v", body)
	}
	results := body["results"].([]interface{})
	if len(results) != 1 {
		t.Fatalf("expected 1 association, got %v", results)
	}
	first := results[0].(map[string]interface{})
	if first["view_index"].(float64) != 2 {
		t.Errorf("expected association resolved to candidate 2, got %v", first)
	}

	resp, body = do(t, "POST", srv.URL+"/api/associations/2/select", nil)
	if resp.StatusCode != http.StatusOK || body["page"].(float64) != 1 {
		t.Errorf("expected jump to page 1, got %d %v", resp.StatusCode, body)
	}
	if store.Snapshot().AssociationOpen {
		t.Error("panel should close after the page changes")
	}

	resp, _ = do(t, "POST", srv.URL+"/api/associations/1/select", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("pruned candidate should answer 404, got %d", resp.StatusCode)
	}
}

func TestState(t *testing.T) {
	srv, _ := newTestServer(t)

	_, body := do(t, "GET", srv.URL+"/api/state", nil)
	if body["source"] != "cars" {
		t.Errorf("expected source cars, got %v", body["source"])
	}
	if len(body["view_spaces"].([]interface{})) != 3 {
		t.Errorf("expected 3 pages before clustering, got %v", body["view_spaces"])
	}
}
