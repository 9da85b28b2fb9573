package googlecal

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

const tokenWriteTimeout = 10 * time.Second

// persistingTokenSource wraps a reuse token source and writes every refreshed
// access token back to tenant storage. A write failure is logged but does not
// fail the calendar call: the token is still valid in memory.
type persistingTokenSource struct {
	base     oauth2.TokenSource
	tenantID string
	writer   TokenWriter
	logger   *logging.Logger

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	changed := token.AccessToken != "" && token.AccessToken != s.last
	if changed {
		s.last = token.AccessToken
	}
	s.mu.Unlock()

	if changed && s.writer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), tokenWriteTimeout)
		defer cancel()
		if err := s.writer.UpdateGoogleToken(ctx, s.tenantID, token.AccessToken, token.Expiry); err != nil {
			s.logger.Warn("failed to persist refreshed google token",
				"tenant_id", s.tenantID,
				"error", err,
			)
		}
	}
	return token, nil
}
