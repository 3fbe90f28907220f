package actions

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soarlink/trustar-connector/internal/host"
)

const latestBody = `{
	"source": "osint",
	"intervalSize": 24,
	"queryDate": 1487890914000,
	"indicators": {
		"IP": ["8.8.8.8", "1.1.1.1"],
		"DOMAIN": ["evil.example.com"]
	}
}`

// newPollServer serves the token and latest-indicators endpoints, recording
// the intervalSize parameter of the last fetch.
func newPollServer(t *testing.T, body string, gotInterval *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/oauth/token":
			fmt.Fprint(w, `{"access_token":"tok"}`)
		case "/api/1.1/indicators/latest":
			*gotInterval = r.URL.Query().Get("intervalSize")
			fmt.Fprint(w, body)
		default:
			http.NotFound(w, r)
		}
	}))
}

func boolPtr(b bool) *bool { return &b }

func TestOnPollScheduledComputesInterval(t *testing.T) {
	var gotInterval string
	server := newPollServer(t, `{"source":"osint","intervalSize":2,"queryDate":1,"indicators":{}}`, &gotInterval)
	defer server.Close()

	sess, _, states := newTestSession(t, server.URL)
	states.state = host.State{FirstRun: boolPtr(false)}

	err := OnPoll(context.Background(), sess, PollParams{StartTime: 0, EndTime: 7200000})
	if err != nil {
		t.Fatalf("OnPoll: %v", err)
	}
	if gotInterval != "2" {
		t.Errorf("intervalSize = %q, want 2", gotInterval)
	}
}

func TestOnPollScheduledRoundsIntervalUp(t *testing.T) {
	var gotInterval string
	server := newPollServer(t, `{"source":"osint","intervalSize":2,"queryDate":1,"indicators":{}}`, &gotInterval)
	defer server.Close()

	sess, _, states := newTestSession(t, server.URL)
	states.state = host.State{FirstRun: boolPtr(false)}

	// 90 minutes rounds up to 2 hours.
	err := OnPoll(context.Background(), sess, PollParams{StartTime: 0, EndTime: 5400000})
	if err != nil {
		t.Fatalf("OnPoll: %v", err)
	}
	if gotInterval != "2" {
		t.Errorf("intervalSize = %q, want 2", gotInterval)
	}
}

func TestOnPollFirstScheduledRunFetchesEverything(t *testing.T) {
	var gotInterval string
	server := newPollServer(t, latestBody, &gotInterval)
	defer server.Close()

	sess, _, states := newTestSession(t, server.URL)

	err := OnPoll(context.Background(), sess, PollParams{StartTime: 0, EndTime: 7200000})
	if err != nil {
		t.Fatalf("OnPoll: %v", err)
	}
	if gotInterval != "" {
		t.Errorf("intervalSize = %q, want unset on first run", gotInterval)
	}
	if states.saves != 1 || states.state.FirstRunPending() {
		t.Errorf("first_run not persisted: saves=%d state=%+v", states.saves, states.state)
	}
}

func TestOnPollNowIgnoresWindow(t *testing.T) {
	var gotInterval string
	server := newPollServer(t, latestBody, &gotInterval)
	defer server.Close()

	sess, _, states := newTestSession(t, server.URL)
	states.state = host.State{FirstRun: boolPtr(false)}

	err := OnPoll(context.Background(), sess, PollParams{StartTime: 0, EndTime: 7200000, PollNow: true})
	if err != nil {
		t.Fatalf("OnPoll: %v", err)
	}
	if gotInterval != "" {
		t.Errorf("intervalSize = %q, want unset for poll now", gotInterval)
	}
	if states.saves != 0 {
		t.Errorf("poll now must not touch state, saves=%d", states.saves)
	}
}

func TestOnPollIngestsArtifacts(t *testing.T) {
	var gotInterval string
	server := newPollServer(t, latestBody, &gotInterval)
	defer server.Close()

	sess, writer, _ := newTestSession(t, server.URL)

	err := OnPoll(context.Background(), sess, PollParams{PollNow: true})
	if err != nil {
		t.Fatalf("OnPoll: %v", err)
	}
	if len(writer.containers) != 1 {
		t.Fatalf("containers = %d", len(writer.containers))
	}
	if writer.containers[0].Name != "osint-24-1487890914000" {
		t.Errorf("container name = %q", writer.containers[0].Name)
	}
	if len(writer.artifacts) != 3 {
		t.Fatalf("artifacts = %d, want 3", len(writer.artifacts))
	}
	automated := 0
	for _, a := range writer.artifacts {
		if a.RunAutomation {
			automated++
		}
	}
	if automated != 1 {
		t.Errorf("run_automation count = %d", automated)
	}
	summary := sess.Result.Summary()
	if summary["artifacts_ingested"] != 3 {
		t.Errorf("artifacts_ingested = %v", summary["artifacts_ingested"])
	}
}

func TestOnPollEmptyIndicatorsSkipsIngestion(t *testing.T) {
	var gotInterval string
	server := newPollServer(t, `{"source":"osint","intervalSize":24,"queryDate":1,"indicators":{}}`, &gotInterval)
	defer server.Close()

	sess, writer, _ := newTestSession(t, server.URL)

	err := OnPoll(context.Background(), sess, PollParams{PollNow: true})
	if err != nil {
		t.Fatalf("OnPoll: %v", err)
	}
	if len(writer.containers) != 0 || len(writer.artifacts) != 0 {
		t.Errorf("unexpected ingestion: %d containers, %d artifacts", len(writer.containers), len(writer.artifacts))
	}
}

func TestOnPollContainerFailureAbortsBatch(t *testing.T) {
	var gotInterval string
	server := newPollServer(t, latestBody, &gotInterval)
	defer server.Close()

	sess, writer, _ := newTestSession(t, server.URL)
	writer.failContainer = true

	err := OnPoll(context.Background(), sess, PollParams{PollNow: true})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(writer.artifacts) != 0 {
		t.Errorf("artifacts attempted without a container: %d", len(writer.artifacts))
	}
	if sess.Result.Status() != "failed" {
		t.Errorf("result status = %q", sess.Result.Status())
	}
}

func TestOnPollArtifactFailureIsSkipped(t *testing.T) {
	var gotInterval string
	server := newPollServer(t, latestBody, &gotInterval)
	defer server.Close()

	sess, writer, _ := newTestSession(t, server.URL)
	writer.failArtifacts = 1

	err := OnPoll(context.Background(), sess, PollParams{PollNow: true})
	if err != nil {
		t.Fatalf("OnPoll: %v", err)
	}
	if len(writer.artifacts) != 2 {
		t.Errorf("artifacts = %d, want remaining 2", len(writer.artifacts))
	}
	if sess.Result.Summary()["artifacts_ingested"] != 2 {
		t.Errorf("artifacts_ingested = %v", sess.Result.Summary()["artifacts_ingested"])
	}
}
