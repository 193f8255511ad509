package tg

import (
	"errors"
	"reflect"
	"testing"
)

func TestDecodeMessageOptionalFieldsStayAbsent(t *testing.T) {
	t.Parallel()

	o := parseObject(t, `{
		"message_id": 1,
		"date": 1700000000,
		"chat": {"id": -100, "type": "supergroup", "title": "room"}
	}`)
	m, err := DecodeMessage(o)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if m.From != nil {
		t.Fatalf("absent sender must stay nil, got %+v", m.From)
	}
	if m.Text != "" || m.Photo != nil || m.ReplyToMessage != nil {
		t.Fatalf("absent payloads must stay zero: %+v", m)
	}
}

func TestDecodeMessageRequiresCore(t *testing.T) {
	t.Parallel()

	o := parseObject(t, `{"message_id": 1, "text": "no chat"}`)
	_, err := DecodeMessage(o)
	var missingErr *MissingFieldsError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	if !reflect.DeepEqual(missingErr.Fields, []string{"date", "chat"}) {
		t.Fatalf("unexpected fields: %v", missingErr.Fields)
	}
}

func TestDecodeMessageNestedReply(t *testing.T) {
	t.Parallel()

	o := parseObject(t, `{
		"message_id": 2,
		"date": 1700000001,
		"chat": {"id": -100, "type": "group"},
		"reply_to_message": {
			"message_id": 1,
			"date": 1700000000,
			"chat": {"id": -100, "type": "group"},
			"text": "original"
		}
	}`)
	m, err := DecodeMessage(o)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if m.ReplyToMessage == nil || m.ReplyToMessage.Text != "original" {
		t.Fatalf("nested reply: %+v", m.ReplyToMessage)
	}
}

func TestDecodeUserRequiresIdentity(t *testing.T) {
	t.Parallel()

	_, err := DecodeUser(parseObject(t, `{"id": 5}`))
	var missingErr *MissingFieldsError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	if !reflect.DeepEqual(missingErr.Fields, []string{"first_name"}) {
		t.Fatalf("unexpected fields: %v", missingErr.Fields)
	}
}

func TestUserFullName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		user User
		want string
	}{
		{User{FirstName: "Ann", LastName: "Lee"}, "Ann Lee"},
		{User{FirstName: "Ann"}, "Ann"},
		{User{UserName: "ghost"}, "ghost"},
	}
	for _, c := range cases {
		if got := (&c.user).FullName(); got != c.want {
			t.Fatalf("FullName(%+v) = %q, want %q", c.user, got, c.want)
		}
	}
}

func TestMessageCommandsUseUTF16Offsets(t *testing.T) {
	t.Parallel()

	// The emoji occupies two UTF-16 code units, so the command starts at 3.
	m := Message{
		Text: "\U0001F600 /start now",
		Entities: []MessageEntity{
			{Type: EntityTypeBotCommand, Offset: 3, Length: 6},
			{Type: EntityTypeMention, Offset: 10, Length: 3},
		},
	}
	commands := m.Commands()
	if !reflect.DeepEqual(commands, []string{"/start"}) {
		t.Fatalf("commands: got %v", commands)
	}
}

func TestEntitySliceOutOfRange(t *testing.T) {
	t.Parallel()

	e := MessageEntity{Type: EntityTypeBotCommand, Offset: 5, Length: 10}
	if got := e.Slice("/hi"); got != "" {
		t.Fatalf("out of range slice must be empty, got %q", got)
	}
}
