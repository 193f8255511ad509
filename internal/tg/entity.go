package tg

import (
	"unicode/utf16"

	"github.com/pkg/errors"

	"github.com/iamwavecut/tgward/internal/jsonx"
)

// Entity types marking typed spans inside message text.
const (
	EntityTypeBotCommand = "bot_command"
	EntityTypeMention    = "mention"
	EntityTypeHashtag    = "hashtag"
	EntityTypeURL        = "url"
	EntityTypeEmail      = "email"
)

// MessageEntity marks a typed span in message text. Offset and Length are in
// UTF-16 code units, as the API counts them.
type MessageEntity struct {
	Type   string
	Offset int
	Length int
	URL    string
	User   *User
}

func DecodeMessageEntity(o jsonx.Object) (*MessageEntity, error) {
	if missing := o.Missing("type", "offset", "length"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "message entity", Fields: missing}
	}

	e := &MessageEntity{}
	var err error
	if e.Type, err = o.String("type"); err != nil {
		return nil, errors.WithMessage(err, "decode message entity")
	}
	if e.Offset, err = o.Int("offset"); err != nil {
		return nil, errors.WithMessage(err, "decode message entity")
	}
	if e.Length, err = o.Int("length"); err != nil {
		return nil, errors.WithMessage(err, "decode message entity")
	}
	if o.Contains("url") {
		if e.URL, err = o.String("url"); err != nil {
			return nil, errors.WithMessage(err, "decode message entity")
		}
	}
	if o.Contains("user") {
		userObj, err := o.Object("user")
		if err != nil {
			return nil, errors.WithMessage(err, "decode message entity")
		}
		if e.User, err = DecodeUser(userObj); err != nil {
			return nil, errors.WithMessage(err, "decode message entity")
		}
	}
	return e, nil
}

// Slice extracts the span the entity marks from text, honoring UTF-16 offsets.
func (e *MessageEntity) Slice(text string) string {
	units := utf16.Encode([]rune(text))
	if e.Offset < 0 || e.Length < 0 || e.Offset+e.Length > len(units) {
		return ""
	}
	return string(utf16.Decode(units[e.Offset : e.Offset+e.Length]))
}
