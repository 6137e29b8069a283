package cmd

import (
	"reflect"
	"strings"
	"testing"

	"github.com/iksnae/anybot/internal"
	"github.com/iksnae/anybot/testutil"
)

func TestCreateCommand(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	doc := testutil.WriteFile(t, testutil.CreateTempDir(t), "guide.md", "# Guide")

	out, err := executeCommand(t, "--query-url", fake.URL, "--bot-url", fake.URL,
		"create", "--name", "Docs", "--doc", doc, "--url", "https://docs.example.com", "--url", " ")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for _, want := range []string{"ID:        " + testutil.FakeBotID, "Name:      Docs", "guide.md", "https://docs.example.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q should contain %q", out, want)
		}
	}

	reqs := fake.Requests()
	if len(reqs) != 1 || reqs[0].Path != "/api/create-bot" {
		t.Fatalf("requests = %+v, want one create call", reqs)
	}
	if !reflect.DeepEqual(reqs[0].Files, []string{"guide.md"}) {
		t.Errorf("uploaded files = %v", reqs[0].Files)
	}
	if !reflect.DeepEqual(reqs[0].Values["urls"], []string{"https://docs.example.com"}) {
		t.Errorf("urls = %v, blank URLs should be dropped", reqs[0].Values["urls"])
	}
}

func TestCreateCommand_Validation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"blank name", []string{"create", "--name", "  "}, internal.MsgNameRequired},
		{"missing document", []string{"create", "--name", "Docs", "--doc", "/definitely/not/here.md"}, "Reading documents"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeAPI(t)
			args := append([]string{"--query-url", fake.URL, "--bot-url", fake.URL}, tt.args...)
			_, err := executeCommand(t, args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
			if n := len(fake.Requests()); n != 0 {
				t.Errorf("no request should be sent, got %d", n)
			}
		})
	}
}

func TestUpdateCommand(t *testing.T) {
	fake := testutil.NewFakeAPI(t)

	out, err := executeCommand(t, "--query-url", fake.URL, "--bot-url", fake.URL,
		"update", "--id", "bot-7", "--name", "Docs v2", "--keep", "guide.md")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !strings.Contains(out, "ID:        bot-7") || !strings.Contains(out, "guide.md") {
		t.Errorf("unexpected output %q", out)
	}

	reqs := fake.Requests()
	if len(reqs) != 1 || reqs[0].Method != "PUT" || reqs[0].Path != "/api/update-bot" {
		t.Fatalf("requests = %+v, want one PUT /api/update-bot", reqs)
	}
	if got := reqs[0].Values["botId"]; !reflect.DeepEqual(got, []string{"bot-7"}) {
		t.Errorf("botId = %v", got)
	}
	if got := reqs[0].Values["documents"]; !reflect.DeepEqual(got, []string{"guide.md"}) {
		t.Errorf("kept documents = %v", got)
	}
}

func TestUpdateCommand_RequiresID(t *testing.T) {
	fake := testutil.NewFakeAPI(t)

	_, err := executeCommand(t, "--query-url", fake.URL, "--bot-url", fake.URL, "update", "--name", "Docs")
	if err == nil || !strings.Contains(err.Error(), internal.MsgSelectBot) {
		t.Errorf("error = %v, want %q", err, internal.MsgSelectBot)
	}
	if n := len(fake.Requests()); n != 0 {
		t.Errorf("no request should be sent, got %d", n)
	}
}
