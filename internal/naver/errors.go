// Package naver talks to the cafe web API: login, comment writes, and the
// comment listing used to detect our own prior posts.
package naver

import "errors"

// Sentinel errors for classified remote failures. Callers use errors.Is to
// branch on the class; the wrapped message carries endpoint detail.
var (
	// ErrAuth means the identity endpoint rejected the credentials.
	ErrAuth = errors.New("credentials rejected")

	// ErrCaptcha means login is blocked behind a captcha challenge.
	ErrCaptcha = errors.New("captcha challenge required")

	// ErrAuthExpired means the service no longer accepts the session.
	ErrAuthExpired = errors.New("session expired")

	// ErrThrottled means the service signalled a rate limit.
	ErrThrottled = errors.New("request throttled")

	// ErrRejected means the comment was refused for content or validation
	// reasons and must not be retried.
	ErrRejected = errors.New("comment rejected")

	// ErrDuplicate means an identical comment is already present.
	ErrDuplicate = errors.New("comment already present")

	// ErrNetwork covers transport failures and 5xx responses.
	ErrNetwork = errors.New("network failure")
)
