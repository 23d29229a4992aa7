package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/outliyr/x-search-mcp/internal/application"
	"github.com/outliyr/x-search-mcp/internal/domain/search"
)

type fakeSearcher struct {
	result *search.Result
	err    error
}

func (f *fakeSearcher) Search(ctx context.Context, q search.Query) (*search.Result, error) {
	return f.result, f.err
}

type fakeStatus struct {
	status *search.AuthStatus
	err    error
}

func (f *fakeStatus) Status(ctx context.Context) (*search.AuthStatus, error) {
	return f.status, f.err
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	bird := &fakeSearcher{result: &search.Result{
		Source: search.SourceBird,
		Topic:  "golang",
		Posts:  []search.Post{{Text: "gophers assemble"}},
	}}
	status := &fakeStatus{status: &search.AuthStatus{Authenticated: true, Handle: "@tester"}}
	svc := application.NewSearchService(bird, status, nil, nil)
	srv := NewServer(svc)
	srv.now = func() time.Time { return time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC) }
	return srv
}

type rpcResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      int              `json:"id"`
	Result  *json.RawMessage `json:"result,omitempty"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// dispatch round-trips one JSON-RPC request through the server.
func dispatch(t *testing.T, srv *Server, request string) rpcResponse {
	t.Helper()
	msg := srv.HandleMessage(context.Background(), json.RawMessage(request))
	if msg == nil {
		t.Fatal("no response for request")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	var resp rpcResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return resp
}

// toolText extracts the text content of a tools/call result.
func toolText(t *testing.T, resp rpcResponse) (string, bool) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("rpc error: %s", resp.Error.Message)
	}
	var result struct {
		IsError bool `json:"isError"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(*resp.Result, &result); err != nil {
		t.Fatalf("unmarshal tool result: %v", err)
	}
	if len(result.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	return result.Content[0].Text, result.IsError
}

func callTool(name string, args map[string]any) string {
	params := map[string]any{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	raw, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      7,
		"method":  "tools/call",
		"params":  params,
	})
	return string(raw)
}

func TestInitializeAndToolsList(t *testing.T) {
	srv := newTestServer(t)

	resp := dispatch(t, srv, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","clientInfo":{"name":"test","version":"0.0.0"},"capabilities":{}}}`)
	if resp.Error != nil {
		t.Fatalf("initialize error: %s", resp.Error.Message)
	}
	var initResult map[string]any
	if err := json.Unmarshal(*resp.Result, &initResult); err != nil {
		t.Fatal(err)
	}
	info, ok := initResult["serverInfo"].(map[string]any)
	if !ok || info["name"] != ServerName {
		t.Errorf("serverInfo = %v", initResult["serverInfo"])
	}

	resp = dispatch(t, srv, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	if resp.Error != nil {
		t.Fatalf("tools/list error: %s", resp.Error.Message)
	}
	names := map[string]bool{}
	var toolsResult struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(*resp.Result, &toolsResult); err != nil {
		t.Fatal(err)
	}
	for _, tool := range toolsResult.Tools {
		names[tool.Name] = true
	}
	if !names["search_x"] || !names["check_auth"] {
		t.Errorf("registered tools = %v", names)
	}
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)
	resp := dispatch(t, srv, `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	if resp.Error != nil {
		t.Fatalf("ping error: %s", resp.Error.Message)
	}
}

func TestSearchXTool(t *testing.T) {
	srv := newTestServer(t)
	resp := dispatch(t, srv, callTool("search_x", map[string]any{"topic": "golang"}))

	text, isErr := toolText(t, resp)
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	var res search.Result
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatalf("tool text is not a result: %v", err)
	}
	if res.Source != search.SourceBird || len(res.Posts) != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestSearchXTool_MissingTopic(t *testing.T) {
	srv := newTestServer(t)
	resp := dispatch(t, srv, callTool("search_x", map[string]any{}))
	if _, isErr := toolText(t, resp); !isErr {
		t.Error("missing topic should be a tool error")
	}
}

func TestSearchXTool_BadDepth(t *testing.T) {
	srv := newTestServer(t)
	resp := dispatch(t, srv, callTool("search_x", map[string]any{"topic": "x", "depth": "bottomless"}))
	text, isErr := toolText(t, resp)
	if !isErr {
		t.Error("bad depth should be a tool error")
	}
	if !strings.Contains(text, "depth") {
		t.Errorf("error text = %q", text)
	}
}

func TestSearchXTool_BackendsUnavailable(t *testing.T) {
	svc := application.NewSearchService(nil, &fakeStatus{err: fmt.Errorf("no bird")}, nil, nil)
	srv := NewServer(svc)

	resp := dispatch(t, srv, callTool("search_x", map[string]any{"topic": "golang"}))
	text, isErr := toolText(t, resp)
	if isErr {
		t.Fatal("exhaustion should be payload, not tool error")
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(payload["error"], "unavailable") {
		t.Errorf("payload = %v", payload)
	}
}

func TestCheckAuthTool(t *testing.T) {
	srv := newTestServer(t)
	resp := dispatch(t, srv, callTool("check_auth", nil))
	text, isErr := toolText(t, resp)
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	var status search.AuthStatus
	if err := json.Unmarshal([]byte(text), &status); err != nil {
		t.Fatal(err)
	}
	if !status.Authenticated || status.Handle != "@tester" {
		t.Errorf("status = %+v", status)
	}
}
