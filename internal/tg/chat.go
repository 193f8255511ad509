package tg

import (
	"github.com/pkg/errors"

	"github.com/iamwavecut/tgward/internal/jsonx"
)

// Chat types as the API reports them.
const (
	ChatTypePrivate    = "private"
	ChatTypeGroup      = "group"
	ChatTypeSupergroup = "supergroup"
	ChatTypeChannel    = "channel"
)

type Chat struct {
	ID        int64
	Type      string
	Title     string
	UserName  string
	FirstName string
	LastName  string
}

func DecodeChat(o jsonx.Object) (*Chat, error) {
	if missing := o.Missing("id", "type"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "chat", Fields: missing}
	}

	c := &Chat{}
	var err error
	if c.ID, err = o.Int64("id"); err != nil {
		return nil, errors.WithMessage(err, "decode chat")
	}
	if c.Type, err = o.String("type"); err != nil {
		return nil, errors.WithMessage(err, "decode chat")
	}
	for key, dst := range map[string]*string{
		"title":      &c.Title,
		"username":   &c.UserName,
		"first_name": &c.FirstName,
		"last_name":  &c.LastName,
	} {
		if !o.Contains(key) {
			continue
		}
		if *dst, err = o.String(key); err != nil {
			return nil, errors.WithMessage(err, "decode chat")
		}
	}
	return c, nil
}

// ChatMember pairs a user with their membership status in a chat.
type ChatMember struct {
	User   User
	Status string
}

const (
	MemberStatusCreator       = "creator"
	MemberStatusAdministrator = "administrator"
	MemberStatusMember        = "member"
	MemberStatusRestricted    = "restricted"
	MemberStatusLeft          = "left"
	MemberStatusKicked        = "kicked"
)

func DecodeChatMember(o jsonx.Object) (*ChatMember, error) {
	if missing := o.Missing("user", "status"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "chat member", Fields: missing}
	}

	userObj, err := o.Object("user")
	if err != nil {
		return nil, errors.WithMessage(err, "decode chat member")
	}
	user, err := DecodeUser(userObj)
	if err != nil {
		return nil, errors.WithMessage(err, "decode chat member")
	}
	status, err := o.String("status")
	if err != nil {
		return nil, errors.WithMessage(err, "decode chat member")
	}
	return &ChatMember{User: *user, Status: status}, nil
}
