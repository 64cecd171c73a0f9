package generation

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Kind classifies a generation failure.
type Kind string

// Failure kinds reported by backend adapters.
const (
	KindFormat      Kind = "format_error"
	KindInterrupted Kind = "generation_interrupted"
	KindEmpty       Kind = "empty_generation"
	KindNoImage     Kind = "no_image_produced"
	KindNetwork     Kind = "network_error"
	KindRateLimited Kind = "rate_limited"
	KindAuth        Kind = "auth_error"
	KindBadRequest  Kind = "bad_request"
	KindUnknown     Kind = "unknown"
)

// Messages carried by adapter-originated errors. They are shown to readers
// verbatim, so they are written in Chinese.
const (
	MsgFormat      = "AI生成的数据格式有误，请重试。"
	MsgInterrupted = "故事生成中断: "
	MsgEmpty       = "无法生成故事，请重试。"
	MsgNoImage     = "无法生成图片"
)

// Error is a classified generation failure.
type Error struct {
	Kind Kind
	// Message is the human readable text; when empty Err's text is used.
	Message string
	// Reason is the backend finish reason for KindInterrupted.
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind, so errors.Is(err,
// &Error{Kind: KindAuth}) works without comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// NewFormatError reports output that could not be parsed or validated.
func NewFormatError(err error) *Error {
	return &Error{Kind: KindFormat, Message: MsgFormat, Err: err}
}

// NewInterruptedError reports an abnormal backend finish reason.
func NewInterruptedError(reason string) *Error {
	return &Error{Kind: KindInterrupted, Message: MsgInterrupted + reason, Reason: reason}
}

// NewEmptyError reports a response without usable output.
func NewEmptyError() *Error {
	return &Error{Kind: KindEmpty, Message: MsgEmpty}
}

// NewNoImageError reports an image response without inline image data.
func NewNoImageError() *Error {
	return &Error{Kind: KindNoImage, Message: MsgNoImage}
}

// Wrap classifies a transport or API failure under kind, keeping its text.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf classifies err. Typed errors report their own kind; anything else is
// classified by network error type or by the status markers in its text.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Kind
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "Rpc failed"):
		return KindNetwork
	case strings.Contains(msg, "429"):
		return KindRateLimited
	case strings.Contains(msg, "401"):
		return KindAuth
	case strings.Contains(msg, "400"):
		return KindBadRequest
	default:
		return KindUnknown
	}
}

// IsPermanent reports whether retrying err is pointless: bad requests,
// authentication failures and cancelled contexts.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch KindOf(err) {
	case KindBadRequest, KindAuth:
		return true
	default:
		return false
	}
}
