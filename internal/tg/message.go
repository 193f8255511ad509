package tg

import (
	"github.com/pkg/errors"

	"github.com/iamwavecut/tgward/internal/jsonx"
)

// Message is a single chat message. Optional payloads are nil pointers when
// the API omits them, so "absent" never collides with a legitimate zero value.
type Message struct {
	MessageID int64
	From      *User
	Date      int64
	Chat      Chat
	Text      string
	Caption   string
	Entities  []MessageEntity

	ForwardFrom     *User
	ForwardFromChat *Chat
	ForwardDate     int64
	ReplyToMessage  *Message
	PinnedMessage   *Message
	EditDate        int64

	Audio    *Audio
	Document *Document
	Photo    []PhotoSize
	Sticker  *Sticker
	Video    *Video
	Voice    *Voice
	Contact  *Contact
	Location *Location
	Venue    *Venue

	NewChatMember  *User
	LeftChatMember *User
	NewChatTitle   string
}

func DecodeMessage(o jsonx.Object) (*Message, error) {
	if missing := o.Missing("message_id", "date", "chat"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "message", Fields: missing}
	}

	m := &Message{}
	var err error
	if m.MessageID, err = o.Int64("message_id"); err != nil {
		return nil, errors.WithMessage(err, "decode message")
	}
	if m.Date, err = o.Int64("date"); err != nil {
		return nil, errors.WithMessage(err, "decode message")
	}
	chatObj, err := o.Object("chat")
	if err != nil {
		return nil, errors.WithMessage(err, "decode message")
	}
	chat, err := DecodeChat(chatObj)
	if err != nil {
		return nil, errors.WithMessage(err, "decode message")
	}
	m.Chat = *chat

	if o.Contains("from") {
		fromObj, err := o.Object("from")
		if err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
		if m.From, err = DecodeUser(fromObj); err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("text") {
		if m.Text, err = o.String("text"); err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("caption") {
		if m.Caption, err = o.String("caption"); err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("entities") {
		items, err := o.Array("entities")
		if err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
		for _, item := range items {
			entityObj, err := item.Object()
			if err != nil {
				return nil, errors.WithMessage(err, "decode message")
			}
			entity, err := DecodeMessageEntity(entityObj)
			if err != nil {
				return nil, errors.WithMessage(err, "decode message")
			}
			m.Entities = append(m.Entities, *entity)
		}
	}

	if o.Contains("forward_from") {
		fwdObj, err := o.Object("forward_from")
		if err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
		if m.ForwardFrom, err = DecodeUser(fwdObj); err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("forward_from_chat") {
		fwdChatObj, err := o.Object("forward_from_chat")
		if err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
		if m.ForwardFromChat, err = DecodeChat(fwdChatObj); err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("forward_date") {
		if m.ForwardDate, err = o.Int64("forward_date"); err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("edit_date") {
		if m.EditDate, err = o.Int64("edit_date"); err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
	}
	// Nested replies come at most one level deep; the API strips deeper ones.
	if o.Contains("reply_to_message") {
		replyObj, err := o.Object("reply_to_message")
		if err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
		if m.ReplyToMessage, err = DecodeMessage(replyObj); err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("pinned_message") {
		pinnedObj, err := o.Object("pinned_message")
		if err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
		if m.PinnedMessage, err = DecodeMessage(pinnedObj); err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
	}

	if err := m.decodeMedia(o); err != nil {
		return nil, err
	}

	if o.Contains("new_chat_member") {
		memberObj, err := o.Object("new_chat_member")
		if err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
		if m.NewChatMember, err = DecodeUser(memberObj); err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("left_chat_member") {
		memberObj, err := o.Object("left_chat_member")
		if err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
		if m.LeftChatMember, err = DecodeUser(memberObj); err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("new_chat_title") {
		if m.NewChatTitle, err = o.String("new_chat_title"); err != nil {
			return nil, errors.WithMessage(err, "decode message")
		}
	}
	return m, nil
}

func (m *Message) decodeMedia(o jsonx.Object) error {
	if o.Contains("audio") {
		audioObj, err := o.Object("audio")
		if err != nil {
			return errors.WithMessage(err, "decode message")
		}
		if m.Audio, err = DecodeAudio(audioObj); err != nil {
			return errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("document") {
		docObj, err := o.Object("document")
		if err != nil {
			return errors.WithMessage(err, "decode message")
		}
		if m.Document, err = DecodeDocument(docObj); err != nil {
			return errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("photo") {
		sizes, err := o.Array("photo")
		if err != nil {
			return errors.WithMessage(err, "decode message")
		}
		for _, size := range sizes {
			sizeObj, err := size.Object()
			if err != nil {
				return errors.WithMessage(err, "decode message")
			}
			ps, err := DecodePhotoSize(sizeObj)
			if err != nil {
				return errors.WithMessage(err, "decode message")
			}
			m.Photo = append(m.Photo, *ps)
		}
	}
	if o.Contains("sticker") {
		stickerObj, err := o.Object("sticker")
		if err != nil {
			return errors.WithMessage(err, "decode message")
		}
		if m.Sticker, err = DecodeSticker(stickerObj); err != nil {
			return errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("video") {
		videoObj, err := o.Object("video")
		if err != nil {
			return errors.WithMessage(err, "decode message")
		}
		if m.Video, err = DecodeVideo(videoObj); err != nil {
			return errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("voice") {
		voiceObj, err := o.Object("voice")
		if err != nil {
			return errors.WithMessage(err, "decode message")
		}
		if m.Voice, err = DecodeVoice(voiceObj); err != nil {
			return errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("contact") {
		contactObj, err := o.Object("contact")
		if err != nil {
			return errors.WithMessage(err, "decode message")
		}
		if m.Contact, err = DecodeContact(contactObj); err != nil {
			return errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("location") {
		locObj, err := o.Object("location")
		if err != nil {
			return errors.WithMessage(err, "decode message")
		}
		if m.Location, err = DecodeLocation(locObj); err != nil {
			return errors.WithMessage(err, "decode message")
		}
	}
	if o.Contains("venue") {
		venueObj, err := o.Object("venue")
		if err != nil {
			return errors.WithMessage(err, "decode message")
		}
		if m.Venue, err = DecodeVenue(venueObj); err != nil {
			return errors.WithMessage(err, "decode message")
		}
	}
	return nil
}

// Commands returns the bot-command spans of the message text.
func (m *Message) Commands() []string {
	var commands []string
	for i := range m.Entities {
		if m.Entities[i].Type != EntityTypeBotCommand {
			continue
		}
		if cmd := m.Entities[i].Slice(m.Text); cmd != "" {
			commands = append(commands, cmd)
		}
	}
	return commands
}
