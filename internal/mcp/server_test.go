package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/danielpatrickdp/viewspace/internal/explore"
	"github.com/danielpatrickdp/viewspace/internal/ingest"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// helper: an initialized store with three candidates that cluster into two groups
func setupTestStore(t *testing.T) *explore.Store {
	t.Helper()
	st := explore.NewStore(nil, nil, explore.Options{})
	b := &ingest.Bundle{Name: "cars"}
	b.Views = []viewspace.ViewSpace{
		{Dimensions: []string{"A", "B"}, Schema: viewspace.Schema{"mark": "bar"}},
		{Dimensions: []string{"A", "B"}, Schema: viewspace.Schema{"mark": "bar"}},
		{Dimensions: []string{"C", "D"}, Schema: viewspace.Schema{"mark": "line"}},
	}
	b.Subspaces = []viewspace.Subspace{{Dimensions: []string{"A", "B"}}, {Dimensions: []string{"C", "D"}}}
	st.Init(b, b.Catalog(), b.Subspaces)
	return st
}

func TestNewServer(t *testing.T) {
	srv := NewServer(ServerConfig{Store: setupTestStore(t)})
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
}

// callTool is a helper that invokes an MCP tool through a JSON-RPC message.
func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]interface{}) *mcplib.CallToolResult {
	t.Helper()

	result := srv.HandleMessage(context.Background(), mustMarshal(t, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      name,
			"arguments": args,
		},
	}))

	respBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, string(respBytes))
	}
	if resp.Error != nil {
		t.Fatalf("JSON-RPC error: %d %s", resp.Error.Code, resp.Error.Message)
	}

	callResult := &mcplib.CallToolResult{IsError: resp.Result.IsError}
	for _, c := range resp.Result.Content {
		if c.Type == "text" {
			callResult.Content = append(callResult.Content, mcplib.NewTextContent(c.Text))
		}
	}
	return callResult
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func getTextContent(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content in result")
	return ""
}

func decode(t *testing.T, result *mcplib.CallToolResult) map[string]interface{} {
	t.Helper()
	if result.IsError {
		t.Fatalf("tool returned error: %s", getTextContent(t, result))
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &out); err != nil {
		t.Fatalf("decode tool output: %v", err)
	}
	return out
}

func TestPageTool(t *testing.T) {
	srv := NewServer(ServerConfig{Store: setupTestStore(t)})

	out := decode(t, callTool(t, srv, "explore_page", map[string]interface{}{"action": "last"}))
	if out["page"].(float64) != 2 {
		t.Errorf("last from page 0 should wrap to 2, got %v", out["page"])
	}

	out = decode(t, callTool(t, srv, "explore_page", map[string]interface{}{"action": "goto", "page": 2}))
	if out["page"].(float64) != 1 {
		t.Errorf("display page 2 is index 1, got %v", out["page"])
	}

	res := callTool(t, srv, "explore_page", map[string]interface{}{"action": "goto"})
	if !res.IsError {
		t.Error("goto without page should be an error")
	}
}

func TestLikeTool_Toggles(t *testing.T) {
	st := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: st})

	out := decode(t, callTool(t, srv, "explore_like", nil))
	if out["liked"] != true {
		t.Fatalf("expected liked, got %v", out)
	}
	out = decode(t, callTool(t, srv, "explore_like", nil))
	if out["liked"] != false || out["total"].(float64) != 0 {
		t.Fatalf("expected unliked, got %v", out)
	}
}

func TestClusterTool(t *testing.T) {
	st := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: st, MaxGroups: 10})

	out := decode(t, callTool(t, srv, "explore_cluster", map[string]interface{}{"max_groups": 5}))
	report := out["report"].(map[string]interface{})
	if report["groups"].(float64) != 2 || report["applied"] != true {
		t.Errorf("unexpected report: %v", report)
	}

	res := callTool(t, srv, "explore_cluster", map[string]interface{}{"max_groups": -3})
	if !res.IsError {
		t.Error("negative max_groups should be an error")
	}
}

func TestFocusAndAssociationTools(t *testing.T) {
	st := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: st})
	decode(t, callTool(t, srv, "explore_cluster", nil))

	res := callTool(t, srv, "explore_focus", map[string]interface{}{"index": 42})
	if !res.IsError {
		t.Error("unknown index should be an error")
	}

	out := decode(t, callTool(t, srv, "explore_associations", nil))
	results := out["results"].([]interface{})
	if len(results) != 1 {
		t.Fatalf("expected 1 association, got %v", results)
	}

	out = decode(t, callTool(t, srv, "explore_select_association", map[string]interface{}{"view_index": 2}))
	if out["page"].(float64) != 1 {
		t.Errorf("expected page 1, got %v", out["page"])
	}

	res = callTool(t, srv, "explore_select_association", map[string]interface{}{"view_index": 1})
	if !res.IsError || !strings.Contains(getTextContent(t, res), "not on any page") {
		t.Error("pruned candidate should not resolve")
	}
}

func TestStateTool(t *testing.T) {
	srv := NewServer(ServerConfig{Store: setupTestStore(t)})

	out := decode(t, callTool(t, srv, "explore_state", nil))
	if out["source"] != "cars" || out["candidates"].(float64) != 3 {
		t.Errorf("unexpected state: %v", out)
	}
}

func TestStateResource(t *testing.T) {
	srv := NewServer(ServerConfig{Store: setupTestStore(t)})

	result := srv.HandleMessage(context.Background(), mustMarshal(t, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "resources/read",
		"params":  map[string]interface{}{"uri": "viewspace://state"},
	}))

	respBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	var resp struct {
		Result struct {
			Contents []struct {
				Text string `json:"text"`
			} `json:"contents"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Result.Contents) != 1 || !strings.Contains(resp.Result.Contents[0].Text, `"source": "cars"`) {
		t.Errorf("unexpected resource contents: %s", string(respBytes))
	}
}
