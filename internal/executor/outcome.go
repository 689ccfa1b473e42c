package executor

// Class is the executor's classification of one post attempt.
type Class int

const (
	// ClassSuccess means the comment was posted.
	ClassSuccess Class = iota
	// ClassDuplicate means the comment was already present; treated as
	// success so retried posting never doubles up.
	ClassDuplicate
	// ClassAuthExpired means the session was rejected; retryable after the
	// session store re-logs-in.
	ClassAuthExpired
	// ClassThrottled means the service signalled a rate limit; retryable
	// after penalizing the limiter.
	ClassThrottled
	// ClassRejected means content/validation failure; fatal for the task.
	ClassRejected
	// ClassTransport means a transient transport failure; retryable.
	ClassTransport
)

// Outcome is the result of one post attempt.
type Outcome struct {
	Class Class
	Err   error
}

// Retryable reports whether the class may be attempted again.
func (c Class) Retryable() bool {
	switch c {
	case ClassAuthExpired, ClassThrottled, ClassTransport:
		return true
	}
	return false
}

func (c Class) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassDuplicate:
		return "duplicate"
	case ClassAuthExpired:
		return "auth_expired"
	case ClassThrottled:
		return "throttled"
	case ClassRejected:
		return "rejected"
	case ClassTransport:
		return "transport_error"
	}
	return "unknown"
}

// errString returns the outcome's error message, or "" for none.
func errString(out Outcome) string {
	if out.Err == nil {
		return ""
	}
	return out.Err.Error()
}
