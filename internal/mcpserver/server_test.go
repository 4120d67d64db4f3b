package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xmazu/envedit/internal/journal"
	"github.com/xmazu/envedit/internal/schema"
)

func connect(t *testing.T, opts Options) *mcpsdk.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	if _, err := New(opts).Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server Connect() error = %v", err)
	}

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client Connect() error = %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func call(t *testing.T, session *mcpsdk.ClientSession, tool string, args map[string]any) (map[string]any, bool) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{Name: tool, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s) error = %v", tool, err)
	}
	text := res.Content[0].(*mcpsdk.TextContent).Text
	if res.IsError {
		return map[string]any{"error": text}, false
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("CallTool(%s) returned %q: %v", tool, text, err)
	}
	return out, true
}

func writeEnv(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadTools(t *testing.T) {
	dir := t.TempDir()
	writeEnv(t, dir, "# db\nDB_HOST=localhost\nAPI_KEY=sk_live_abcdef123456\n")
	sub := filepath.Join(dir, "apps", "web")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	session := connect(t, Options{Atomic: true, Journal: true})

	out, ok := call(t, session, "list_keys", map[string]any{"workdir": sub})
	if !ok {
		t.Fatalf("list_keys failed: %v", out)
	}
	keys, _ := json.Marshal(out["keys"])
	if string(keys) != `["DB_HOST","API_KEY"]` {
		t.Errorf("keys = %s", keys)
	}

	out, _ = call(t, session, "get_masked", map[string]any{"workdir": dir, "key": "API_KEY"})
	if out["value"] != "****************3456" || out["masked"] != true {
		t.Errorf("get_masked = %v", out)
	}
	out, _ = call(t, session, "get_masked", map[string]any{"workdir": dir, "key": "DB_HOST"})
	if out["value"] != "localhost" || out["masked"] != false {
		t.Errorf("get_masked = %v", out)
	}

	out, _ = call(t, session, "key_exists", map[string]any{"workdir": dir, "key": "NOPE"})
	if out["exists"] != false {
		t.Errorf("key_exists = %v", out)
	}

	out, _ = call(t, session, "preview", map[string]any{"workdir": dir})
	content, _ := out["content"].(string)
	if !strings.Contains(content, "# db\nDB_HOST=localhost\n") || strings.Contains(content, "sk_live") {
		t.Errorf("preview content = %q", content)
	}

	if out, ok := call(t, session, "get_masked", map[string]any{"workdir": dir, "key": "NOPE"}); ok {
		t.Errorf("get_masked of a missing key should fail: %v", out)
	}
}

func TestSetAndRemove(t *testing.T) {
	dir := t.TempDir()
	path := writeEnv(t, dir, "A=1\nC=3\n")

	session := connect(t, Options{Atomic: true, Journal: true})

	out, ok := call(t, session, "set_value", map[string]any{
		"workdir":  dir,
		"key":      "B",
		"value":    "two words",
		"position": "after:A",
	})
	if !ok || out["changed"] != true {
		t.Fatalf("set_value = %v", out)
	}
	if strings.Contains(mustJSON(t, out), "two words") {
		t.Errorf("set_value echoed the value: %v", out)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "A=1\nB=\"two words\"\nC=3\n" {
		t.Errorf("file = %q", data)
	}

	out, ok = call(t, session, "set_value", map[string]any{"workdir": dir, "key": "D", "value": "4", "dry_run": true})
	if !ok || out["dry_run"] != true {
		t.Fatalf("set_value dry run = %v", out)
	}
	if data, _ := os.ReadFile(path); strings.Contains(string(data), "D=4") {
		t.Error("dry run wrote the file")
	}

	if out, ok := call(t, session, "set_value", map[string]any{"workdir": dir, "key": "E", "value": "5", "position": "middle"}); ok {
		t.Errorf("invalid position accepted: %v", out)
	}

	if out, ok := call(t, session, "remove_key", map[string]any{"workdir": dir, "key": "A"}); !ok {
		t.Fatalf("remove_key = %v", out)
	}
	if out, ok := call(t, session, "remove_key", map[string]any{"workdir": dir, "key": "A"}); ok {
		t.Errorf("removing a missing key should fail: %v", out)
	}

	entries, err := journal.Show(dir, 0)
	if err != nil {
		t.Fatalf("journal.Show() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Tool != "set_value" || entries[1].Tool != "remove_key" {
		t.Errorf("journal = %+v", entries)
	}

	out, _ = call(t, session, "journal_verify", map[string]any{"workdir": dir})
	if out["verified"] != true {
		t.Errorf("journal_verify = %v", out)
	}
}

func TestSetCreatesFile(t *testing.T) {
	dir := t.TempDir()
	session := connect(t, Options{Atomic: true})

	if out, ok := call(t, session, "set_value", map[string]any{"workdir": dir, "file": ".env.local", "key": "A", "value": "1"}); !ok {
		t.Fatalf("set_value = %v", out)
	}
	data, err := os.ReadFile(filepath.Join(dir, ".env.local"))
	if err != nil || string(data) != "A=1" {
		t.Errorf("file = %q, %v", data, err)
	}
}

func TestDiffAndMerge(t *testing.T) {
	dir := t.TempDir()
	path := writeEnv(t, dir, "A=1\nSECRET=current-secret-value\n")
	if err := os.WriteFile(filepath.Join(dir, ".env.example"), []byte("A=1\nB=2\nSECRET=other-secret-value\n"), 0644); err != nil {
		t.Fatal(err)
	}

	session := connect(t, Options{Atomic: true})

	out, ok := call(t, session, "diff_files", map[string]any{"workdir": dir, "other": ".env.example"})
	if !ok {
		t.Fatalf("diff_files = %v", out)
	}
	raw := mustJSON(t, out)
	if strings.Contains(raw, "secret-value") {
		t.Errorf("diff_files leaked a value: %s", raw)
	}
	if !strings.Contains(raw, `"missing_in_current":{"B":"2"}`) || out["in_sync"] != false {
		t.Errorf("diff_files = %s", raw)
	}

	out, ok = call(t, session, "merge_files", map[string]any{"workdir": dir, "other": ".env.example"})
	if !ok {
		t.Fatalf("merge_files = %v", out)
	}
	if mustJSON(t, out["applied"]) != `["B"]` {
		t.Errorf("applied = %v", out["applied"])
	}
	data, _ := os.ReadFile(path)
	if string(data) != "A=1\nSECRET=current-secret-value\n\nB=2" {
		t.Errorf("file = %q", data)
	}
}

func TestCheckSchema(t *testing.T) {
	dir := t.TempDir()
	writeEnv(t, dir, "PORT=eighty\n")

	session := connect(t, Options{Schema: &schema.Spec{
		Required: []string{"APP_KEY"},
		Types:    map[string]schema.Type{"PORT": schema.TypeInt},
	}})

	out, ok := call(t, session, "check_schema", map[string]any{"workdir": dir})
	if !ok {
		t.Fatalf("check_schema = %v", out)
	}
	raw := mustJSON(t, out)
	if out["valid"] != false || !strings.Contains(raw, `"missing":["APP_KEY"]`) || !strings.Contains(raw, `"PORT":"not a valid int"`) {
		t.Errorf("check_schema = %s", raw)
	}
	if strings.Contains(raw, "eighty") {
		t.Errorf("check_schema leaked a value: %s", raw)
	}

	t.Run("without schema", func(t *testing.T) {
		session := connect(t, Options{})
		if out, ok := call(t, session, "check_schema", map[string]any{"workdir": dir}); ok {
			t.Errorf("check_schema without schema = %v", out)
		}
	})
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
