package client

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Sentinel variants for known remote failures. Callers match with errors.Is
// instead of sniffing description strings.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrChatNotFound      = errors.New("chat not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrMessageNotFound   = errors.New("message not found")
	ErrBotBlocked        = errors.New("bot was blocked by the user")
	ErrChatAdminRequired = errors.New("chat admin required")
	ErrTooManyRequests   = errors.New("too many requests")
	ErrUnknownRemote     = errors.New("unknown remote error")
)

// ConnectivityError means the remote request could not complete at all.
// Raised before any JSON parsing is attempted.
type ConnectivityError struct {
	err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("telegram api unreachable: %v", e.err)
}

func (e *ConnectivityError) Unwrap() error { return e.err }

// ProtocolError means the response arrived but was not a valid envelope.
type ProtocolError struct {
	err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed telegram api response: %v", e.err)
}

func (e *ProtocolError) Unwrap() error { return e.err }

// RemoteError is an ok:false envelope translated into a typed variant.
type RemoteError struct {
	Code        int
	Description string
	kind        error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("telegram api error %d: %s", e.Code, e.Description)
}

func (e *RemoteError) Unwrap() error { return e.kind }

// knownRemoteErrors maps (error_code, normalized description) pairs onto
// sentinels. Lookups fall back to code-only matches, then ErrUnknownRemote.
var knownRemoteErrors = map[int]map[string]error{
	400: {
		"chat not found":      ErrChatNotFound,
		"user not found":      ErrUserNotFound,
		"message not found":   ErrMessageNotFound,
		"chat_admin_required": ErrChatAdminRequired,
	},
	403: {
		"bot was blocked by the user": ErrBotBlocked,
	},
}

var knownRemoteCodes = map[int]error{
	401: ErrUnauthorized,
	429: ErrTooManyRequests,
}

func mapRemoteError(code int, description string) *RemoteError {
	kind := ErrUnknownRemote
	normalized := strings.ToLower(strings.TrimSpace(description))
	// Descriptions arrive as "Bad Request: chat not found"; match the tail.
	if idx := strings.LastIndex(normalized, ": "); idx >= 0 {
		normalized = normalized[idx+2:]
	}
	if byDescription, ok := knownRemoteErrors[code]; ok {
		if mapped, ok := byDescription[normalized]; ok {
			kind = mapped
		}
	}
	if kind == ErrUnknownRemote {
		if mapped, ok := knownRemoteCodes[code]; ok {
			kind = mapped
		}
	}
	return &RemoteError{Code: code, Description: description, kind: kind}
}
