package bot

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/tgward/internal/client"
	"github.com/iamwavecut/tgward/internal/spam"
	"github.com/iamwavecut/tgward/internal/tg"
)

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return log.NewEntry(logger)
}

type apiCall struct {
	Method string
	Args   url.Values
}

// apiServer fakes the remote API: one canned responder per method name.
func apiServer(t *testing.T, responders map[string]func(args url.Values) string) (*Bot, *[]apiCall) {
	t.Helper()
	calls := &[]apiCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := path.Base(r.URL.Path)
		*calls = append(*calls, apiCall{Method: method, Args: r.URL.Query()})
		responder, ok := responders[method]
		if !ok {
			t.Errorf("unexpected api call: %s", method)
			_, _ = w.Write([]byte(`{"ok": false, "error_code": 400, "description": "Bad Request: unexpected"}`))
			return
		}
		_, _ = w.Write([]byte(responder(r.URL.Query())))
	}))
	t.Cleanup(srv.Close)

	c := client.New("TEST", testLogger(), client.WithBaseURL(srv.URL))
	return New(c, testLogger()), calls
}

func staticResult(result string) func(url.Values) string {
	return func(url.Values) string {
		return `{"ok": true, "result": ` + result + `}`
	}
}

func TestSendMessageValidatesParams(t *testing.T) {
	t.Parallel()

	b, calls := apiServer(t, nil)

	cases := []struct {
		name   string
		chatID string
		text   string
		opts   *SendMessageOptions
		param  string
	}{
		{"blank chat", "", "hi", nil, "chat_id"},
		{"blank text", "1", "", nil, "text"},
		{"bad parse mode", "1", "hi", &SendMessageOptions{ParseMode: "BBCode"}, "parse_mode"},
	}
	for _, c := range cases {
		_, err := b.SendMessage(context.Background(), c.chatID, c.text, c.opts)
		var paramErr *ParamError
		if !errors.As(err, &paramErr) {
			t.Fatalf("%s: expected ParamError, got %v", c.name, err)
		}
		if paramErr.Param != c.param {
			t.Fatalf("%s: expected param %q, got %q", c.name, c.param, paramErr.Param)
		}
	}
	if len(*calls) != 0 {
		t.Fatalf("validation must happen before any network call, saw %v", *calls)
	}
}

func TestSendChatActionRejectsUnknownAction(t *testing.T) {
	t.Parallel()

	b, calls := apiServer(t, nil)
	err := b.SendChatAction(context.Background(), "1", "moonwalking")
	var paramErr *ParamError
	if !errors.As(err, &paramErr) || paramErr.Param != "action" {
		t.Fatalf("expected action ParamError, got %v", err)
	}
	if len(*calls) != 0 {
		t.Fatalf("validation must happen before any network call, saw %v", *calls)
	}
}

func TestGetUpdatesRejectsBadLimit(t *testing.T) {
	t.Parallel()

	b, calls := apiServer(t, nil)
	for _, limit := range []int{-1, 101} {
		_, err := b.GetUpdates(context.Background(), UpdatesOptions{Limit: limit})
		var paramErr *ParamError
		if !errors.As(err, &paramErr) || paramErr.Param != "limit" {
			t.Fatalf("limit %d: expected limit ParamError, got %v", limit, err)
		}
	}
	if len(*calls) != 0 {
		t.Fatalf("validation must happen before any network call, saw %v", *calls)
	}
}

func TestSendMessageEncodesArguments(t *testing.T) {
	t.Parallel()

	b, calls := apiServer(t, map[string]func(url.Values) string{
		"sendMessage": staticResult(`{"message_id": 10, "date": 1700000000, "chat": {"id": 1, "type": "private"}, "text": "hi there"}`),
	})
	msg, err := b.SendMessage(context.Background(), "1", "hi there", &SendMessageOptions{
		ParseMode:        "HTML",
		ReplyToMessageID: 9,
	})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if msg.MessageID != 10 || msg.Text != "hi there" {
		t.Fatalf("decoded message: %+v", msg)
	}
	args := (*calls)[0].Args
	if args.Get("chat_id") != "1" || args.Get("text") != "hi there" ||
		args.Get("parse_mode") != "HTML" || args.Get("reply_to_message_id") != "9" {
		t.Fatalf("encoded args: %v", args)
	}
}

func TestGetFileLink(t *testing.T) {
	t.Parallel()

	b, _ := apiServer(t, map[string]func(url.Values) string{
		"getFile": staticResult(`{"file_id": "abc", "file_path": "photos/file_1.jpg"}`),
	})
	link, err := b.GetFileLink(context.Background(), "abc")
	if err != nil {
		t.Fatalf("get file link: %v", err)
	}
	if !strings.HasSuffix(link, "/file/botTEST/photos/file_1.jpg") {
		t.Fatalf("unexpected link: %q", link)
	}
}

func TestGetFileLinkWithoutPath(t *testing.T) {
	t.Parallel()

	b, _ := apiServer(t, map[string]func(url.Values) string{
		"getFile": staticResult(`{"file_id": "abc"}`),
	})
	if _, err := b.GetFileLink(context.Background(), "abc"); err == nil {
		t.Fatalf("expected error when file_path is absent")
	}
}

func TestKickChatMemberRequiresAdmin(t *testing.T) {
	t.Parallel()

	b, _ := apiServer(t, map[string]func(url.Values) string{
		"getMe":         staticResult(`{"id": 99, "first_name": "ward", "is_bot": true}`),
		"getChatMember": staticResult(`{"user": {"id": 99, "first_name": "ward"}, "status": "member"}`),
	})
	_, err := b.KickChatMember(context.Background(), "-100", 5)
	var paramErr *ParamError
	if !errors.As(err, &paramErr) {
		t.Fatalf("expected ParamError for non-admin bot, got %v", err)
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	b, _ := apiServer(t, map[string]func(url.Values) string{
		"getMe": staticResult(`{"id": 99, "first_name": "ward", "is_bot": true}`),
	})
	latency, err := b.Ping(context.Background())
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if latency <= 0 {
		t.Fatalf("latency must be positive, got %v", latency)
	}
}

func TestDiscernCommands(t *testing.T) {
	t.Parallel()

	b, _ := apiServer(t, nil)
	updates := []tg.Update{
		{UpdateID: 1, Message: &tg.Message{
			Text: "/ping @wardbot",
			Entities: []tg.MessageEntity{
				{Type: tg.EntityTypeBotCommand, Offset: 0, Length: 5},
				{Type: tg.EntityTypeMention, Offset: 6, Length: 8},
			},
		}},
		{UpdateID: 2, Message: &tg.Message{Text: "no commands here"}},
		{UpdateID: 3, InlineEvent: map[string]any{"id": "q"}},
	}
	commands := b.DiscernCommands(updates)
	if len(commands) != 1 || commands[0].Command != "/ping" {
		t.Fatalf("commands: %+v", commands)
	}
	if commands[0].Message.Text != "/ping @wardbot" {
		t.Fatalf("command must carry its source message")
	}
}

func TestGetAndClearUpdatesAcksBeforeFiltering(t *testing.T) {
	t.Parallel()

	pending := `[
		{"update_id": 100, "message": {"message_id": 1, "date": 100, "chat": {"id": -1, "type": "group"}, "from": {"id": 7, "first_name": "S"}, "text": "buy"}},
		{"update_id": 101, "message": {"message_id": 2, "date": 100, "chat": {"id": -1, "type": "group"}, "from": {"id": 7, "first_name": "S"}, "text": "buy"}},
		{"update_id": 102, "message": {"message_id": 3, "date": 200, "chat": {"id": -1, "type": "group"}, "from": {"id": 8, "first_name": "Ok"}, "text": "hello"}}
	]`
	b, calls := apiServer(t, map[string]func(url.Values) string{
		"getUpdates": func(args url.Values) string {
			if args.Get("offset") != "" {
				return `{"ok": true, "result": []}`
			}
			return `{"ok": true, "result": ` + pending + `}`
		},
	})
	filter := spam.NewFilter(spam.Config{
		Interval:        time.Second,
		FirstThreshold:  3,
		SecondThreshold: 5,
	}, b, nil, testLogger())
	b.AttachFilter(filter)

	updates, err := b.GetAndClearUpdates(context.Background())
	if err != nil {
		t.Fatalf("get and clear: %v", err)
	}
	if len(updates) != 1 || updates[0].UpdateID != 102 {
		t.Fatalf("expected only the clean update, got %+v", updates)
	}

	if len(*calls) != 2 {
		t.Fatalf("expected fetch then ack, saw %v", *calls)
	}
	if got := (*calls)[1].Args.Get("offset"); got != "103" {
		t.Fatalf("ack offset: got %q want %q", got, "103")
	}
}

func TestGetUpdatesUnfilteredWithoutFilter(t *testing.T) {
	t.Parallel()

	b, _ := apiServer(t, map[string]func(url.Values) string{
		"getUpdates": staticResult(`[
			{"update_id": 1, "message": {"message_id": 1, "date": 100, "chat": {"id": -1, "type": "group"}, "from": {"id": 7, "first_name": "S"}}},
			{"update_id": 2, "message": {"message_id": 2, "date": 100, "chat": {"id": -1, "type": "group"}, "from": {"id": 7, "first_name": "S"}}}
		]`),
	})
	updates, err := b.GetUpdates(context.Background(), UpdatesOptions{})
	if err != nil {
		t.Fatalf("get updates: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("no filter attached, expected raw batch, got %d", len(updates))
	}
}
