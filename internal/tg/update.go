package tg

import (
	"github.com/pkg/errors"

	"github.com/iamwavecut/tgward/internal/jsonx"
)

// updateVariants are the mutually exclusive payload keys an update may carry.
var updateVariants = []string{
	"message",
	"edited_message",
	"inline_query",
	"chosen_inline_result",
	"callback_query",
}

// Update wraps exactly one inbound event. Exactly one variant field is
// non-nil after a successful decode.
type Update struct {
	UpdateID      int64
	Message       *Message
	EditedMessage *Message
	// Inline events are carried opaquely; the filter never inspects them.
	InlineEvent jsonx.Object
}

func DecodeUpdate(o jsonx.Object) (*Update, error) {
	if missing := o.Missing("update_id"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "update", Fields: missing}
	}
	present := o.Present(updateVariants...)
	if len(present) > 1 {
		return nil, &ConflictingFieldsError{Entity: "update", Fields: present}
	}
	if len(present) == 0 {
		return nil, &MissingFieldsError{Entity: "update", Fields: updateVariants}
	}

	u := &Update{}
	var err error
	if u.UpdateID, err = o.Int64("update_id"); err != nil {
		return nil, errors.WithMessage(err, "decode update")
	}

	switch present[0] {
	case "message":
		msgObj, err := o.Object("message")
		if err != nil {
			return nil, errors.WithMessage(err, "decode update")
		}
		if u.Message, err = DecodeMessage(msgObj); err != nil {
			return nil, errors.WithMessage(err, "decode update")
		}
	case "edited_message":
		msgObj, err := o.Object("edited_message")
		if err != nil {
			return nil, errors.WithMessage(err, "decode update")
		}
		if u.EditedMessage, err = DecodeMessage(msgObj); err != nil {
			return nil, errors.WithMessage(err, "decode update")
		}
	default:
		inlineObj, err := o.Object(present[0])
		if err != nil {
			return nil, errors.WithMessage(err, "decode update")
		}
		u.InlineEvent = inlineObj
	}
	return u, nil
}

// Msg returns whichever message variant the update carries, or nil.
func (u *Update) Msg() *Message {
	switch {
	case u.Message != nil:
		return u.Message
	case u.EditedMessage != nil:
		return u.EditedMessage
	}
	return nil
}

// Sender returns the message sender, or nil for inline events and messages
// without one (channel posts).
func (u *Update) Sender() *User {
	if msg := u.Msg(); msg != nil {
		return msg.From
	}
	return nil
}

// Date returns the unix timestamp of the carried message, or 0.
func (u *Update) Date() int64 {
	if msg := u.Msg(); msg != nil {
		return msg.Date
	}
	return 0
}

// Text returns the textual content of the carried message, or "".
func (u *Update) Text() string {
	if msg := u.Msg(); msg != nil {
		return msg.Text
	}
	return ""
}
