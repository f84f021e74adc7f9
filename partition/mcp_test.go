package partition

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/unstruct/kvstore"
)

var testMCPImpl = &mcp.Implementation{Name: "unstruct-test", Version: "0.1.0"}

func mcpSession(t *testing.T, client *Client) *mcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(testMCPImpl, nil)
	client.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	mcpClient := mcp.NewClient(testMCPImpl, nil)
	session, err := mcpClient.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func mcpCallTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("CallTool(%s) tool error: %v", name, err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text
}

func mcpBackend(t *testing.T, elements []Element) *httptest.Server {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(elements)
	}))
	t.Cleanup(backend.Close)
	return backend
}

// --- partition_text ---

func TestMCP_PartitionText(t *testing.T) {
	backend := mcpBackend(t, []Element{{Text: "Hello"}, {Text: "World"}})
	client := New(Config{Env: EnvMap(map[string]string{ServerURLEnv: backend.URL})})
	session := mcpSession(t, client)

	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	text := mcpCallTool(t, session, "partition_text", map[string]any{"path": path})

	var resp struct {
		FileName string `json:"file_name"`
		Chars    int    `json:"chars"`
		Text     string `json:"text"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if resp.Text != "Hello\n\nWorld" {
		t.Errorf("text: got %q", resp.Text)
	}
	if resp.FileName != "doc.pdf" {
		t.Errorf("file_name: got %q", resp.FileName)
	}
	if resp.Chars != len(resp.Text) {
		t.Errorf("chars: got %d, want %d", resp.Chars, len(resp.Text))
	}
}

func TestMCP_PartitionText_MissingFile(t *testing.T) {
	backend := mcpBackend(t, nil)
	client := New(Config{Env: EnvMap(map[string]string{ServerURLEnv: backend.URL})})
	session := mcpSession(t, client)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "partition_text",
		Arguments: map[string]any{"path": filepath.Join(t.TempDir(), "nope.pdf")},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if result.GetError() == nil {
		t.Error("expected a tool error for a missing file")
	}
}

// --- partition_params ---

func TestMCP_PartitionParams(t *testing.T) {
	store := kvstore.NewMemory()
	if err := SetAPIKey(context.Background(), store, "abc"); err != nil {
		t.Fatal(err)
	}
	client := New(Config{
		Credentials: store,
		Env: EnvMap(map[string]string{
			ServerURLEnv: "https://unstructured.internal",
			"STRATEGY":   StrategyAuto,
			"LANGUAGES":  "en,fr",
		}),
	})
	session := mcpSession(t, client)

	text := mcpCallTool(t, session, "partition_params", map[string]any{})

	var resp struct {
		Params    Params `json:"params"`
		ServerURL string `json:"server_url"`
		HasAPIKey bool   `json:"has_api_key"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if resp.Params.Strategy != StrategyAuto {
		t.Errorf("strategy: got %q", resp.Params.Strategy)
	}
	if strings.Join(resp.Params.Languages, ",") != "en,fr" {
		t.Errorf("languages: got %v", resp.Params.Languages)
	}
	if resp.ServerURL != "https://unstructured.internal" {
		t.Errorf("server_url: got %q", resp.ServerURL)
	}
	if !resp.HasAPIKey {
		t.Error("has_api_key: got false, want true")
	}
}
