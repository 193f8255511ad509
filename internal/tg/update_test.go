package tg

import (
	"errors"
	"strings"
	"testing"

	"github.com/iamwavecut/tgward/internal/jsonx"
)

func parseObject(t *testing.T, raw string) jsonx.Object {
	t.Helper()
	v, err := jsonx.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	o, err := v.Object()
	if err != nil {
		t.Fatalf("not an object: %v", err)
	}
	return o
}

func TestDecodeUpdateMessage(t *testing.T) {
	t.Parallel()

	o := parseObject(t, `{
		"update_id": 42,
		"message": {
			"message_id": 7,
			"date": 1700000000,
			"chat": {"id": -100, "type": "group", "title": "room"},
			"from": {"id": 5, "first_name": "Ann", "username": "ann"},
			"text": "hello"
		}
	}`)
	u, err := DecodeUpdate(o)
	if err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if u.UpdateID != 42 {
		t.Fatalf("update id: got %d", u.UpdateID)
	}
	if u.Message == nil || u.EditedMessage != nil || u.InlineEvent != nil {
		t.Fatalf("expected only the message variant set: %+v", u)
	}
	if sender := u.Sender(); sender == nil || sender.ID != 5 {
		t.Fatalf("sender: got %+v", sender)
	}
	if u.Date() != 1700000000 || u.Text() != "hello" {
		t.Fatalf("accessors: date=%d text=%q", u.Date(), u.Text())
	}
}

func TestDecodeUpdateEditedMessage(t *testing.T) {
	t.Parallel()

	o := parseObject(t, `{
		"update_id": 43,
		"edited_message": {
			"message_id": 8,
			"date": 1700000100,
			"chat": {"id": 9, "type": "private", "first_name": "Bob"},
			"from": {"id": 9, "first_name": "Bob"},
			"text": "fixed"
		}
	}`)
	u, err := DecodeUpdate(o)
	if err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if u.EditedMessage == nil || u.Message != nil {
		t.Fatalf("expected only the edited_message variant set: %+v", u)
	}
	if u.Msg() != u.EditedMessage {
		t.Fatalf("Msg must surface the edited message")
	}
}

func TestDecodeUpdateInlineEventIsOpaque(t *testing.T) {
	t.Parallel()

	o := parseObject(t, `{
		"update_id": 44,
		"inline_query": {"id": "q1", "query": "cats"}
	}`)
	u, err := DecodeUpdate(o)
	if err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if u.InlineEvent == nil {
		t.Fatalf("expected inline event payload")
	}
	if u.Sender() != nil || u.Msg() != nil {
		t.Fatalf("inline events carry no message")
	}
}

func TestDecodeUpdateRejectsConflictingVariants(t *testing.T) {
	t.Parallel()

	o := parseObject(t, `{
		"update_id": 45,
		"message": {"message_id": 1, "date": 1, "chat": {"id": 1, "type": "private"}},
		"edited_message": {"message_id": 2, "date": 2, "chat": {"id": 1, "type": "private"}}
	}`)
	_, err := DecodeUpdate(o)
	var conflictErr *ConflictingFieldsError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected ConflictingFieldsError, got %v", err)
	}
	if !strings.Contains(conflictErr.Error(), "too many values present") {
		t.Fatalf("unexpected message: %q", conflictErr.Error())
	}
}

func TestDecodeUpdateRejectsEmptyVariant(t *testing.T) {
	t.Parallel()

	o := parseObject(t, `{"update_id": 46}`)
	_, err := DecodeUpdate(o)
	var missingErr *MissingFieldsError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	if len(missingErr.Fields) != len(updateVariants) {
		t.Fatalf("error must name every variant, got %v", missingErr.Fields)
	}
}

func TestDecodeUpdateRequiresUpdateID(t *testing.T) {
	t.Parallel()

	o := parseObject(t, `{"message": {"message_id": 1, "date": 1, "chat": {"id": 1, "type": "private"}}}`)
	_, err := DecodeUpdate(o)
	var missingErr *MissingFieldsError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	if len(missingErr.Fields) != 1 || missingErr.Fields[0] != "update_id" {
		t.Fatalf("unexpected fields: %v", missingErr.Fields)
	}
}
