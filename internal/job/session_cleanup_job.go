package job

import (
	"context"
	"time"

	"github.com/xiexing/askhub/internal/session"
)

type SessionCleanupJob struct {
	sessions *session.Store
	maxIdle  time.Duration
}

func NewSessionCleanupJob(sessions *session.Store, maxIdle time.Duration) *SessionCleanupJob {
	return &SessionCleanupJob{sessions: sessions, maxIdle: maxIdle}
}

func (j *SessionCleanupJob) Name() string {
	return "session_cleanup"
}

func (j *SessionCleanupJob) Run(ctx context.Context) error {
	if j.sessions == nil {
		return nil
	}
	maxIdle := j.maxIdle
	if maxIdle <= 0 {
		maxIdle = time.Hour
	}
	j.sessions.EvictIdle(ctx, maxIdle)
	return nil
}
