package publisher

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Kind categorizes a failed platform call
type Kind int

const (
	KindOther Kind = iota
	KindNotFound
	KindForbidden
	KindInsufficientRights
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInsufficientRights:
		return "insufficient_rights"
	default:
		return "other"
	}
}

// Error is returned by Publisher implementations
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, KindOther if it is not a publisher error
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindOther
}

// classify maps a Telegram API failure to an Error
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var pe *Error
	if errors.As(err, &pe) {
		return err
	}

	code := 0
	msg := err.Error()

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		code = apiErr.Code
		msg = apiErr.Message
	}

	return &Error{Kind: kindFor(code, msg), Op: op, Err: err}
}

func kindFor(code int, msg string) Kind {
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "chat not found"),
		strings.Contains(lower, "user not found"):
		return KindNotFound
	case strings.Contains(lower, "not enough rights"),
		strings.Contains(lower, "chat_write_forbidden"),
		strings.Contains(lower, "administrator rights"),
		strings.Contains(lower, "need administrator"):
		return KindInsufficientRights
	case strings.Contains(lower, "bot was blocked"),
		strings.Contains(lower, "bot was kicked"),
		strings.Contains(lower, "kicked"),
		code == 403:
		return KindForbidden
	case code == 400 && strings.Contains(lower, "not found"):
		return KindNotFound
	}
	return KindOther
}
