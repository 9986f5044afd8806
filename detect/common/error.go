package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
)

// Kind classifies an Error. Values are shared with the rest of the library,
// the detection engine only ever produces KindDetectionFailed.
type Kind int

const (
	KindDetectionFailed Kind = iota
	KindTranslationFailed
	KindUnsupportedLanguage
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindDetectionFailed:
		return "language detection failed"
	case KindTranslationFailed:
		return "translation failed"
	case KindUnsupportedLanguage:
		return "unsupported language"
	default:
		return "unexpected error"
	}
}

var (
	// ErrDetectionFailed matches any detection failure with errors.Is.
	ErrDetectionFailed = &Error{Kind: KindDetectionFailed}
)

// Error is the normalized library error.
// Detail carries the kind specific payload (a language code, a message),
// Err the underlying cause, if any.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindDetectionFailed:
		msg = "failed to detect language: the provided text does not contain sufficient identifiable language patterns"
	case KindTranslationFailed:
		msg = fmt.Sprintf("failed to translate text: %s", e.Detail)
	case KindUnsupportedLanguage:
		msg = fmt.Sprintf("unsupported language: %s", e.Detail)
	default:
		msg = fmt.Sprintf("an unexpected error occurred: %s", e.Detail)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality, so wrapped errors match the exported sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NewDetectionFailed(cause error) *Error {
	return &Error{Kind: KindDetectionFailed, Err: cause}
}

func NewUnsupportedLanguage(code string) *Error {
	return &Error{Kind: KindUnsupportedLanguage, Detail: code}
}

func NewTranslationFailed(detail string) *Error {
	return &Error{Kind: KindTranslationFailed, Detail: detail}
}

func NewUnexpected(cause error) *Error {
	e := &Error{Kind: KindUnexpected, Err: cause}
	if cause != nil {
		e.Detail = cause.Error()
	}
	return e
}

// IsDetectionFailed reports whether err, or anything it wraps,
// is a detection failure.
func IsDetectionFailed(err error) bool {
	return errors.Is(err, ErrDetectionFailed)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (kind Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return
}

// HTTPError keeps the exchange of a failed remote detector call
// so it can be dumped at debug level.
type HTTPError struct {
	Err      error
	Request  *http.Request
	Response *http.Response
}

func (r *HTTPError) DumpRequest(body bool) (out []byte) {
	if r.Request != nil {
		if r.Request.GetBody != nil {
			r.Request.Body, _ = r.Request.GetBody()
		}
		out, _ = httputil.DumpRequestOut(r.Request, body)
	}
	return out
}

func (r *HTTPError) DumpResponse(body bool) (out []byte) {
	if r.Response != nil {
		out, _ = httputil.DumpResponse(r.Response, body)
	}
	return out
}

func (r *HTTPError) Error() string {
	return r.Err.Error()
}

func (r *HTTPError) Unwrap() error {
	return r.Err
}
