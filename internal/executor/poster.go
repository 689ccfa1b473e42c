package executor

import (
	"context"
	"errors"

	"github.com/joonhok/cafeloop/internal/naver"
	"github.com/joonhok/cafeloop/internal/session"
	"github.com/joonhok/cafeloop/internal/task"
)

// Poster performs one write action against the remote surface and
// classifies the response.
type Poster interface {
	Post(ctx context.Context, sess *session.Session, t *task.Task) Outcome
}

// CafePoster posts comments through the cafe client.
type CafePoster struct {
	client *naver.Client
}

// NewCafePoster creates a CafePoster backed by the given client.
func NewCafePoster(client *naver.Client) *CafePoster {
	return &CafePoster{client: client}
}

// Post writes the task's comment. On any attempt after the first it probes
// the article's recent comments first, so a resume after a crash between
// posting and recording never posts twice.
func (p *CafePoster) Post(ctx context.Context, _ *session.Session, t *task.Task) Outcome {
	if t.Attempts > 1 {
		found, err := p.client.HasComment(ctx, t.Article, t.Comment)
		if err == nil && found {
			return Outcome{Class: ClassDuplicate}
		}
		// Probe failures fall through to the post; its classification
		// decides how the attempt is recorded.
	}

	return classifyErr(p.client.PostComment(ctx, t.Article, t.Comment))
}

// classifyErr maps client sentinel errors onto outcome classes.
func classifyErr(err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Class: ClassSuccess}
	case errors.Is(err, naver.ErrDuplicate):
		return Outcome{Class: ClassDuplicate}
	case errors.Is(err, naver.ErrAuthExpired):
		return Outcome{Class: ClassAuthExpired, Err: err}
	case errors.Is(err, naver.ErrThrottled):
		return Outcome{Class: ClassThrottled, Err: err}
	case errors.Is(err, naver.ErrRejected):
		return Outcome{Class: ClassRejected, Err: err}
	default:
		return Outcome{Class: ClassTransport, Err: err}
	}
}
