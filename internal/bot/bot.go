// Package bot is the high-level facade over the API client: one method per
// remote endpoint with local parameter validation, plus derived conveniences
// and the spam-filter hookup.
package bot

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/tgward/internal/client"
	"github.com/iamwavecut/tgward/internal/spam"
	"github.com/iamwavecut/tgward/internal/tg"
)

// Chat action kinds accepted by sendChatAction.
var chatActions = map[string]bool{
	"typing":          true,
	"upload_photo":    true,
	"record_video":    true,
	"upload_video":    true,
	"record_audio":    true,
	"upload_audio":    true,
	"upload_document": true,
	"find_location":   true,
}

type Bot struct {
	client *client.Client
	filter *spam.Filter
	logger *log.Entry
}

func New(c *client.Client, logger *log.Entry) *Bot {
	return &Bot{client: c, logger: logger}
}

// AttachFilter enables inbound spam filtering. The filter calls back into
// this bot to deliver its notifications.
func (b *Bot) AttachFilter(f *spam.Filter) {
	b.filter = f
}

// Notify implements spam.Notifier by sending an HTML message to the user.
func (b *Bot) Notify(ctx context.Context, userID int64, html string) error {
	_, err := b.SendMessage(ctx, strconv.FormatInt(userID, 10), html, &SendMessageOptions{ParseMode: "HTML"})
	return err
}

func (b *Bot) GetMe(ctx context.Context) (*tg.User, error) {
	result, err := b.client.Call(ctx, "getMe", nil)
	if err != nil {
		return nil, err
	}
	obj, err := result.Object()
	if err != nil {
		return nil, errors.WithMessage(err, "getMe")
	}
	return tg.DecodeUser(obj)
}

type UpdatesOptions struct {
	Offset  int64
	Limit   int // 0 for the server default, otherwise 1..100
	Timeout int // long-poll seconds
	// NoFilter skips the spam filter even when one is attached.
	NoFilter bool
}

func (b *Bot) GetUpdates(ctx context.Context, opts UpdatesOptions) ([]tg.Update, error) {
	args := url.Values{}
	if opts.Offset != 0 {
		args.Set("offset", strconv.FormatInt(opts.Offset, 10))
	}
	if opts.Limit != 0 {
		if opts.Limit < 1 || opts.Limit > 100 {
			return nil, &ParamError{Param: "limit", Reason: fmt.Sprintf("must be between 1 and 100, got %d", opts.Limit)}
		}
		args.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Timeout != 0 {
		args.Set("timeout", strconv.Itoa(opts.Timeout))
	}

	result, err := b.client.Call(ctx, "getUpdates", args)
	if err != nil {
		return nil, err
	}
	items, err := result.Array()
	if err != nil {
		return nil, errors.WithMessage(err, "getUpdates")
	}
	updates := make([]tg.Update, 0, len(items))
	for _, item := range items {
		obj, err := item.Object()
		if err != nil {
			return nil, errors.WithMessage(err, "getUpdates")
		}
		update, err := tg.DecodeUpdate(obj)
		if err != nil {
			return nil, errors.WithMessage(err, "getUpdates")
		}
		updates = append(updates, *update)
	}

	if opts.NoFilter || b.filter == nil {
		return updates, nil
	}
	return b.filter.Filter(ctx, updates)
}

type SendMessageOptions struct {
	ParseMode             string // "HTML" or "Markdown"
	DisableWebPagePreview bool
	DisableNotification   bool
	ReplyToMessageID      int64
}

func (b *Bot) SendMessage(ctx context.Context, chatID, text string, opts *SendMessageOptions) (*tg.Message, error) {
	if chatID == "" {
		return nil, blankParam("chat_id")
	}
	if text == "" {
		return nil, blankParam("text")
	}

	args := url.Values{}
	args.Set("chat_id", chatID)
	args.Set("text", text)
	if opts != nil {
		if opts.ParseMode != "" {
			if opts.ParseMode != "HTML" && opts.ParseMode != "Markdown" {
				return nil, &ParamError{Param: "parse_mode", Reason: fmt.Sprintf("unsupported mode %q", opts.ParseMode)}
			}
			args.Set("parse_mode", opts.ParseMode)
		}
		if opts.DisableWebPagePreview {
			args.Set("disable_web_page_preview", "true")
		}
		if opts.DisableNotification {
			args.Set("disable_notification", "true")
		}
		if opts.ReplyToMessageID != 0 {
			args.Set("reply_to_message_id", strconv.FormatInt(opts.ReplyToMessageID, 10))
		}
	}
	return b.callMessage(ctx, "sendMessage", args)
}

func (b *Bot) ForwardMessage(ctx context.Context, chatID, fromChatID string, messageID int64, disableNotification bool) (*tg.Message, error) {
	if chatID == "" {
		return nil, blankParam("chat_id")
	}
	if fromChatID == "" {
		return nil, blankParam("from_chat_id")
	}
	if messageID == 0 {
		return nil, blankParam("message_id")
	}

	args := url.Values{}
	args.Set("chat_id", chatID)
	args.Set("from_chat_id", fromChatID)
	args.Set("message_id", strconv.FormatInt(messageID, 10))
	if disableNotification {
		args.Set("disable_notification", "true")
	}
	return b.callMessage(ctx, "forwardMessage", args)
}

// SendMediaOptions covers the shared optional arguments of media sends.
type SendMediaOptions struct {
	Caption             string
	DisableNotification bool
	ReplyToMessageID    int64
}

func (o *SendMediaOptions) apply(args url.Values) {
	if o == nil {
		return
	}
	if o.Caption != "" {
		args.Set("caption", o.Caption)
	}
	if o.DisableNotification {
		args.Set("disable_notification", "true")
	}
	if o.ReplyToMessageID != 0 {
		args.Set("reply_to_message_id", strconv.FormatInt(o.ReplyToMessageID, 10))
	}
}

func (b *Bot) SendPhoto(ctx context.Context, chatID, photoFileID string, opts *SendMediaOptions) (*tg.Message, error) {
	if chatID == "" {
		return nil, blankParam("chat_id")
	}
	if photoFileID == "" {
		return nil, blankParam("photo")
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	args.Set("photo", photoFileID)
	opts.apply(args)
	return b.callMessage(ctx, "sendPhoto", args)
}

func (b *Bot) SendAudio(ctx context.Context, chatID string, audio tg.Audio, opts *SendMediaOptions) (*tg.Message, error) {
	if chatID == "" {
		return nil, blankParam("chat_id")
	}
	if audio.FileID == "" {
		return nil, blankParam("audio")
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	args.Set("audio", audio.FileID)
	if audio.Duration != 0 {
		args.Set("duration", strconv.Itoa(audio.Duration))
	}
	if audio.Performer != "" {
		args.Set("performer", audio.Performer)
	}
	if audio.Title != "" {
		args.Set("title", audio.Title)
	}
	opts.apply(args)
	return b.callMessage(ctx, "sendAudio", args)
}

func (b *Bot) SendDocument(ctx context.Context, chatID, documentFileID string, opts *SendMediaOptions) (*tg.Message, error) {
	if chatID == "" {
		return nil, blankParam("chat_id")
	}
	if documentFileID == "" {
		return nil, blankParam("document")
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	args.Set("document", documentFileID)
	opts.apply(args)
	return b.callMessage(ctx, "sendDocument", args)
}

func (b *Bot) SendSticker(ctx context.Context, chatID, stickerFileID string, opts *SendMediaOptions) (*tg.Message, error) {
	if chatID == "" {
		return nil, blankParam("chat_id")
	}
	if stickerFileID == "" {
		return nil, blankParam("sticker")
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	args.Set("sticker", stickerFileID)
	opts.apply(args)
	return b.callMessage(ctx, "sendSticker", args)
}

func (b *Bot) SendVideo(ctx context.Context, chatID string, video tg.Video, opts *SendMediaOptions) (*tg.Message, error) {
	if chatID == "" {
		return nil, blankParam("chat_id")
	}
	if video.FileID == "" {
		return nil, blankParam("video")
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	args.Set("video", video.FileID)
	if video.Width != 0 {
		args.Set("width", strconv.Itoa(video.Width))
	}
	if video.Height != 0 {
		args.Set("height", strconv.Itoa(video.Height))
	}
	if video.Duration != 0 {
		args.Set("duration", strconv.Itoa(video.Duration))
	}
	opts.apply(args)
	return b.callMessage(ctx, "sendVideo", args)
}

func (b *Bot) SendVoice(ctx context.Context, chatID string, voice tg.Voice, opts *SendMediaOptions) (*tg.Message, error) {
	if chatID == "" {
		return nil, blankParam("chat_id")
	}
	if voice.FileID == "" {
		return nil, blankParam("voice")
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	args.Set("voice", voice.FileID)
	opts.apply(args)
	return b.callMessage(ctx, "sendVoice", args)
}

func (b *Bot) SendLocation(ctx context.Context, chatID string, location tg.Location, opts *SendMediaOptions) (*tg.Message, error) {
	if chatID == "" {
		return nil, blankParam("chat_id")
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	args.Set("latitude", strconv.FormatFloat(location.Latitude, 'f', -1, 64))
	args.Set("longitude", strconv.FormatFloat(location.Longitude, 'f', -1, 64))
	opts.apply(args)
	return b.callMessage(ctx, "sendLocation", args)
}

func (b *Bot) SendVenue(ctx context.Context, chatID string, venue tg.Venue, opts *SendMediaOptions) (*tg.Message, error) {
	if chatID == "" {
		return nil, blankParam("chat_id")
	}
	if venue.Address == "" {
		return nil, blankParam("venue")
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	args.Set("latitude", strconv.FormatFloat(venue.Location.Latitude, 'f', -1, 64))
	args.Set("longitude", strconv.FormatFloat(venue.Location.Longitude, 'f', -1, 64))
	args.Set("title", venue.Title)
	args.Set("address", venue.Address)
	if venue.FoursquareID != "" {
		args.Set("foursquare_id", venue.FoursquareID)
	}
	opts.apply(args)
	return b.callMessage(ctx, "sendVenue", args)
}

func (b *Bot) SendContact(ctx context.Context, chatID string, contact tg.Contact, opts *SendMediaOptions) (*tg.Message, error) {
	if chatID == "" {
		return nil, blankParam("chat_id")
	}
	if contact.PhoneNumber == "" {
		return nil, blankParam("contact")
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	args.Set("phone_number", contact.PhoneNumber)
	args.Set("first_name", contact.FirstName)
	if contact.LastName != "" {
		args.Set("last_name", contact.LastName)
	}
	opts.apply(args)
	return b.callMessage(ctx, "sendContact", args)
}

func (b *Bot) SendChatAction(ctx context.Context, chatID, action string) error {
	if chatID == "" {
		return blankParam("chat_id")
	}
	if action == "" {
		return blankParam("action")
	}
	if !chatActions[action] {
		return &ParamError{Param: "action", Reason: fmt.Sprintf("unknown chat action %q", action)}
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	args.Set("action", action)
	_, err := b.client.Call(ctx, "sendChatAction", args)
	return err
}

func (b *Bot) GetUserProfilePhotos(ctx context.Context, userID int64, offset, limit int) (*tg.UserProfilePhotos, error) {
	if userID == 0 {
		return nil, blankParam("user_id")
	}
	args := url.Values{}
	args.Set("user_id", strconv.FormatInt(userID, 10))
	if offset != 0 {
		args.Set("offset", strconv.Itoa(offset))
	}
	if limit != 0 {
		if limit < 1 || limit > 100 {
			return nil, &ParamError{Param: "limit", Reason: fmt.Sprintf("must be between 1 and 100, got %d", limit)}
		}
		args.Set("limit", strconv.Itoa(limit))
	}
	result, err := b.client.Call(ctx, "getUserProfilePhotos", args)
	if err != nil {
		return nil, err
	}
	obj, err := result.Object()
	if err != nil {
		return nil, errors.WithMessage(err, "getUserProfilePhotos")
	}
	return tg.DecodeUserProfilePhotos(obj)
}

func (b *Bot) GetFile(ctx context.Context, fileID string) (*tg.File, error) {
	if fileID == "" {
		return nil, blankParam("file_id")
	}
	args := url.Values{}
	args.Set("file_id", fileID)
	result, err := b.client.Call(ctx, "getFile", args)
	if err != nil {
		return nil, err
	}
	obj, err := result.Object()
	if err != nil {
		return nil, errors.WithMessage(err, "getFile")
	}
	return tg.DecodeFile(obj)
}

// GetFileLink resolves a file ID into its download URL.
func (b *Bot) GetFileLink(ctx context.Context, fileID string) (string, error) {
	file, err := b.GetFile(ctx, fileID)
	if err != nil {
		return "", err
	}
	if file.FilePath == "" {
		return "", errors.New("getFile returned no file_path")
	}
	return b.client.FileLink(file.FilePath), nil
}

func (b *Bot) KickChatMember(ctx context.Context, chatID string, userID int64) (bool, error) {
	if chatID == "" {
		return false, blankParam("chat_id")
	}
	if userID == 0 {
		return false, blankParam("user_id")
	}
	admin, err := b.ValidateBotAdmin(ctx, chatID)
	if err != nil {
		return false, err
	}
	if !admin {
		return false, &ParamError{Param: "chat_id", Reason: "bot is not an administrator of this chat"}
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	args.Set("user_id", strconv.FormatInt(userID, 10))
	return b.callBool(ctx, "kickChatMember", args)
}

func (b *Bot) UnbanChatMember(ctx context.Context, chatID string, userID int64) (bool, error) {
	if chatID == "" {
		return false, blankParam("chat_id")
	}
	if userID == 0 {
		return false, blankParam("user_id")
	}
	admin, err := b.ValidateBotAdmin(ctx, chatID)
	if err != nil {
		return false, err
	}
	if !admin {
		return false, &ParamError{Param: "chat_id", Reason: "bot is not an administrator of this chat"}
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	args.Set("user_id", strconv.FormatInt(userID, 10))
	return b.callBool(ctx, "unbanChatMember", args)
}

func (b *Bot) LeaveChat(ctx context.Context, chatID string) (bool, error) {
	if chatID == "" {
		return false, blankParam("chat_id")
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	return b.callBool(ctx, "leaveChat", args)
}

func (b *Bot) GetChat(ctx context.Context, chatID string) (*tg.Chat, error) {
	if chatID == "" {
		return nil, blankParam("chat_id")
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	result, err := b.client.Call(ctx, "getChat", args)
	if err != nil {
		return nil, err
	}
	obj, err := result.Object()
	if err != nil {
		return nil, errors.WithMessage(err, "getChat")
	}
	return tg.DecodeChat(obj)
}

func (b *Bot) GetChatAdministrators(ctx context.Context, chatID string) ([]tg.ChatMember, error) {
	if chatID == "" {
		return nil, blankParam("chat_id")
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	result, err := b.client.Call(ctx, "getChatAdministrators", args)
	if err != nil {
		return nil, err
	}
	items, err := result.Array()
	if err != nil {
		return nil, errors.WithMessage(err, "getChatAdministrators")
	}
	admins := make([]tg.ChatMember, 0, len(items))
	for _, item := range items {
		obj, err := item.Object()
		if err != nil {
			return nil, errors.WithMessage(err, "getChatAdministrators")
		}
		member, err := tg.DecodeChatMember(obj)
		if err != nil {
			return nil, errors.WithMessage(err, "getChatAdministrators")
		}
		admins = append(admins, *member)
	}
	return admins, nil
}

func (b *Bot) GetChatMembersCount(ctx context.Context, chatID string) (int, error) {
	if chatID == "" {
		return 0, blankParam("chat_id")
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	result, err := b.client.Call(ctx, "getChatMembersCount", args)
	if err != nil {
		return 0, err
	}
	count, err := result.Int64()
	if err != nil {
		return 0, errors.WithMessage(err, "getChatMembersCount")
	}
	return int(count), nil
}

func (b *Bot) GetChatMember(ctx context.Context, chatID string, userID int64) (*tg.ChatMember, error) {
	if chatID == "" {
		return nil, blankParam("chat_id")
	}
	if userID == 0 {
		return nil, blankParam("user_id")
	}
	args := url.Values{}
	args.Set("chat_id", chatID)
	args.Set("user_id", strconv.FormatInt(userID, 10))
	result, err := b.client.Call(ctx, "getChatMember", args)
	if err != nil {
		return nil, err
	}
	obj, err := result.Object()
	if err != nil {
		return nil, errors.WithMessage(err, "getChatMember")
	}
	return tg.DecodeChatMember(obj)
}

// ValidateBotAdmin reports whether this bot administers the chat.
func (b *Bot) ValidateBotAdmin(ctx context.Context, chatID string) (bool, error) {
	me, err := b.GetMe(ctx)
	if err != nil {
		return false, err
	}
	member, err := b.GetChatMember(ctx, chatID, me.ID)
	if err != nil {
		return false, err
	}
	return member.Status == tg.MemberStatusAdministrator || member.Status == tg.MemberStatusCreator, nil
}

// Ping measures the round-trip latency of a no-op identity call.
func (b *Bot) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if _, err := b.GetMe(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// Command pairs an extracted bot-command span with its source message.
type Command struct {
	Command string
	Message *tg.Message
}

// DiscernCommands scans a batch for messages carrying bot-command entity
// spans and extracts the command text from each span.
func (b *Bot) DiscernCommands(updates []tg.Update) []Command {
	var commands []Command
	for i := range updates {
		msg := updates[i].Msg()
		if msg == nil {
			continue
		}
		for _, cmd := range msg.Commands() {
			commands = append(commands, Command{Command: cmd, Message: msg})
		}
	}
	return commands
}

// ClearUpdates acknowledges everything up to and including lastID by asking
// for the next page.
func (b *Bot) ClearUpdates(ctx context.Context, lastID int64) error {
	_, err := b.GetUpdates(ctx, UpdatesOptions{Offset: lastID + 1, NoFilter: true})
	if err != nil {
		return errors.WithMessage(err, "clear updates")
	}
	b.logger.Trace("cleared updates")
	return nil
}

// GetAndClearUpdates fetches all pending updates unfiltered, acknowledges
// them, and only then applies spam filtering. Acknowledgment is decoupled
// from filtering so a filter failure never causes redelivery.
func (b *Bot) GetAndClearUpdates(ctx context.Context) ([]tg.Update, error) {
	updates, err := b.GetUpdates(ctx, UpdatesOptions{NoFilter: true})
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := b.ClearUpdates(ctx, updates[len(updates)-1].UpdateID); err != nil {
			return nil, err
		}
	}
	if b.filter == nil {
		return updates, nil
	}
	return b.filter.Filter(ctx, updates)
}

func (b *Bot) callMessage(ctx context.Context, method string, args url.Values) (*tg.Message, error) {
	result, err := b.client.Call(ctx, method, args)
	if err != nil {
		return nil, err
	}
	obj, err := result.Object()
	if err != nil {
		return nil, errors.WithMessage(err, method)
	}
	return tg.DecodeMessage(obj)
}

func (b *Bot) callBool(ctx context.Context, method string, args url.Values) (bool, error) {
	result, err := b.client.Call(ctx, method, args)
	if err != nil {
		return false, err
	}
	ok, err := result.Bool()
	if err != nil {
		return false, errors.WithMessage(err, method)
	}
	return ok, nil
}
