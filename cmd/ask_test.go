package cmd

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/anybot/internal"
	"github.com/iksnae/anybot/testutil"
)

func TestAskCommand_QueryService(t *testing.T) {
	fake := testutil.NewFakeAPI(t)

	out, err := executeCommand(t, "--query-url", fake.URL, "--bot-url", fake.URL, "ask", "How", "do", "I", "authenticate?")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	for _, want := range []string{"Stub answer", "Sources:", "Auth section"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q should contain %q", out, want)
		}
	}

	reqs := fake.Requests()
	if len(reqs) != 1 || reqs[0].Path != "/query" {
		t.Fatalf("requests = %+v, want one /query call", reqs)
	}
	var body map[string]interface{}
	testutil.JSONUnmarshal(t, reqs[0].Body, &body)
	if body["query"] != "How do I authenticate?" {
		t.Errorf("query = %v", body["query"])
	}
	if body["top_n"] != float64(2) {
		t.Errorf("top_n = %v, want the configured default 2", body["top_n"])
	}
}

func TestAskCommand_TopNFlag(t *testing.T) {
	fake := testutil.NewFakeAPI(t)

	if _, err := executeCommand(t, "--query-url", fake.URL, "--bot-url", fake.URL, "ask", "--top-n", "7", "hello"); err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	var body map[string]interface{}
	testutil.JSONUnmarshal(t, fake.Requests()[0].Body, &body)
	if body["top_n"] != float64(7) {
		t.Errorf("top_n = %v, want 7", body["top_n"])
	}
}

func TestAskCommand_BotWithTranscript(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	path := filepath.Join(testutil.CreateTempDir(t), "out", "chat.json")

	out, err := executeCommand(t, "--query-url", fake.URL, "--bot-url", fake.URL,
		"ask", "--bot", "bot-9", "--save-transcript", path, "hi there")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if !strings.Contains(out, "Stub answer") {
		t.Errorf("output %q should contain the answer", out)
	}
	if fake.Count("/api/chat") != 1 || fake.Count("/query") != 0 {
		t.Errorf("--bot should only call /api/chat, got %+v", fake.Requests())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("transcript not written: %v", err)
	}
	var convs []internal.Conversation
	if err := json.Unmarshal(data, &convs); err != nil {
		t.Fatalf("transcript should be JSON: %v", err)
	}
	if len(convs) != 1 || convs[0].BotID != "bot-9" || len(convs[0].Messages) != 2 {
		t.Fatalf("unexpected transcript: %+v", convs)
	}
	if convs[0].Messages[1].Text != "Stub answer" {
		t.Errorf("bot message = %q", convs[0].Messages[1].Text)
	}
	if convs[0].ExportedAt.IsZero() {
		t.Error("ExportedAt should be set on export")
	}
}

func TestAskCommand_ServiceFailure(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Respond(http.MethodPost, "/query", http.StatusInternalServerError, `{"error":"boom"}`)

	out, err := executeCommand(t, "--query-url", fake.URL, "--bot-url", fake.URL, "ask", "hello")
	if err == nil {
		t.Fatal("ask should fail when the service fails")
	}
	if !strings.Contains(out, internal.ChatErrorMessage) {
		t.Errorf("output %q should contain the fixed error text", out)
	}
}

func TestAskCommand_RequiresQuestion(t *testing.T) {
	if _, err := executeCommand(t, "ask"); err == nil {
		t.Error("ask without a question should fail")
	}
}
