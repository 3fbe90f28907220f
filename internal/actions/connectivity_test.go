package actions

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConnectivityPass(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok"}`)
	}))
	defer server.Close()

	sess, _, _ := newTestSession(t, server.URL)
	if err := TestConnectivity(context.Background(), sess); err != nil {
		t.Fatalf("TestConnectivity: %v", err)
	}
	if sess.Result.Status() != "success" {
		t.Errorf("status = %q", sess.Result.Status())
	}
	if sess.Result.Message() != msgTestPass {
		t.Errorf("message = %q", sess.Result.Message())
	}
}

func TestConnectivityFail(t *testing.T) {
	sess, _, _ := newTestSession(t, "http://127.0.0.1:1")
	if err := TestConnectivity(context.Background(), sess); err == nil {
		t.Fatal("expected error")
	}
	if sess.Result.Status() != "failed" {
		t.Errorf("status = %q", sess.Result.Status())
	}
	if sess.Result.Message() != msgTestFail {
		t.Errorf("message = %q", sess.Result.Message())
	}
}
