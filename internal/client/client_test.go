package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	log "github.com/sirupsen/logrus"
)

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return log.NewEntry(logger)
}

func TestCallUnwrapsResult(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"ok": true, "result": {"id": 1, "first_name": "ward", "is_bot": true}}`))
	}))
	defer srv.Close()

	c := New("SECRET", testLogger(), WithBaseURL(srv.URL))
	result, err := c.Call(context.Background(), "getMe", nil)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if gotPath != "/botSECRET/getMe" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotQuery != "" {
		t.Fatalf("unexpected query: %q", gotQuery)
	}
	obj, err := result.Object()
	if err != nil {
		t.Fatalf("result object: %v", err)
	}
	name, err := obj.String("first_name")
	if err != nil || name != "ward" {
		t.Fatalf("result content: %q %v", name, err)
	}
}

func TestCallMapsRemoteErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		code        int
		description string
		want        error
	}{
		{"unauthorized", 401, "Unauthorized", ErrUnauthorized},
		{"chat not found", 400, "Bad Request: chat not found", ErrChatNotFound},
		{"user not found", 400, "Bad Request: user not found", ErrUserNotFound},
		{"blocked", 403, "Forbidden: bot was blocked by the user", ErrBotBlocked},
		{"flood", 429, "Too Many Requests: retry after 5", ErrTooManyRequests},
		{"unknown", 400, "Bad Request: something novel", ErrUnknownRemote},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(fmt.Sprintf(`{"ok": false, "error_code": %d, "description": %q}`, c.code, c.description)))
			}))
			defer srv.Close()

			cl := New("SECRET", testLogger(), WithBaseURL(srv.URL))
			_, err := cl.Call(context.Background(), "sendMessage", nil)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
			var remoteErr *RemoteError
			if !errors.As(err, &remoteErr) {
				t.Fatalf("expected RemoteError, got %T", err)
			}
			if remoteErr.Code != c.code || remoteErr.Description != c.description {
				t.Fatalf("remote error details: %+v", remoteErr)
			}
		})
	}
}

func TestCallRejectsMalformedEnvelope(t *testing.T) {
	t.Parallel()

	for name, body := range map[string]string{
		"not json":      `<html>504</html>`,
		"not an object": `[1, 2]`,
		"no ok":         `{"result": 1}`,
		"bare failure":  `{"ok": false}`,
	} {
		body := body
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			cl := New("SECRET", testLogger(), WithBaseURL(srv.URL))
			_, err := cl.Call(context.Background(), "getMe", nil)
			var protocolErr *ProtocolError
			if !errors.As(err, &protocolErr) {
				t.Fatalf("expected ProtocolError, got %v", err)
			}
		})
	}
}

func TestCallReportsConnectivityFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	cl := New("SECRET", testLogger(), WithBaseURL(srv.URL))
	_, err := cl.Call(context.Background(), "getMe", nil)
	var connErr *ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectivityError, got %v", err)
	}
}

func TestFileLink(t *testing.T) {
	t.Parallel()

	c := New("SECRET", testLogger())
	want := "https://api.telegram.org/file/botSECRET/photos/file_1.jpg"
	if got := c.FileLink("photos/file_1.jpg"); got != want {
		t.Fatalf("file link: got %q want %q", got, want)
	}
}
