package tg

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/iamwavecut/tgward/internal/jsonx"
)

// User is an immutable snapshot of a Telegram user or bot. Identity is the ID.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	UserName  string
	IsBot     bool
}

func DecodeUser(o jsonx.Object) (*User, error) {
	if missing := o.Missing("id", "first_name"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "user", Fields: missing}
	}

	u := &User{}
	var err error
	if u.ID, err = o.Int64("id"); err != nil {
		return nil, errors.WithMessage(err, "decode user")
	}
	if u.FirstName, err = o.String("first_name"); err != nil {
		return nil, errors.WithMessage(err, "decode user")
	}
	if o.Contains("last_name") {
		if u.LastName, err = o.String("last_name"); err != nil {
			return nil, errors.WithMessage(err, "decode user")
		}
	}
	if o.Contains("username") {
		if u.UserName, err = o.String("username"); err != nil {
			return nil, errors.WithMessage(err, "decode user")
		}
	}
	if o.Contains("is_bot") {
		if u.IsBot, err = o.Bool("is_bot"); err != nil {
			return nil, errors.WithMessage(err, "decode user")
		}
	}
	return u, nil
}

// FullName joins first and last names, falling back to the username.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	fullName := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if fullName == "" {
		fullName = u.UserName
	}
	return fullName
}
