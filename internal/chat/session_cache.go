package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/redis/go-redis/v9"

	"github.com/leaseline/lease-concierge/pkg/logging"
)

const sessionCacheTTL = 24 * time.Hour

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// CachedSessionStore layers a Redis read-through cache over a backing store.
// Cache misses and cache write failures fall back to the backing store, so a
// flaky Redis degrades latency but never correctness.
type CachedSessionStore struct {
	backing SessionStore
	redis   *redis.Client
	tracer  trace.Tracer
	logger  *logging.Logger
}

// NewCachedSessionStore wraps backing with a Redis cache. redis must not be
// nil; use the backing store directly when no cache is configured.
func NewCachedSessionStore(backing SessionStore, client *redis.Client, tracer trace.Tracer, logger *logging.Logger) *CachedSessionStore {
	if client == nil {
		panic("chat: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("concierge.internal.chat.cache")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedSessionStore{
		backing: backing,
		redis:   client,
		tracer:  tracer,
		logger:  logger,
	}
}

func (s *CachedSessionStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "chat.cache_load_session")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err == nil {
		var session Session
		if err := json.Unmarshal(data, &session); err == nil {
			return &session, nil
		}
		s.logger.Warn("corrupt cached session, falling back", "session_id", sessionID)
	} else if err != redis.Nil {
		span.RecordError(err)
		s.logger.Warn("session cache read failed", "session_id", sessionID, "error", err)
	}

	session, err := s.backing.Load(ctx, sessionID)
	if err != nil || session == nil {
		return session, err
	}
	s.fill(ctx, session)
	return session, nil
}

func (s *CachedSessionStore) Save(ctx context.Context, session *Session) error {
	ctx, span := s.tracer.Start(ctx, "chat.cache_save_session")
	defer span.End()

	if err := s.backing.Save(ctx, session); err != nil {
		span.RecordError(err)
		return err
	}
	s.fill(ctx, session)
	return nil
}

func (s *CachedSessionStore) Delete(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "chat.cache_delete_session")
	defer span.End()

	if err := s.backing.Delete(ctx, sessionID); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: evict cached session %s: %w", sessionID, err)
	}
	return nil
}

func (s *CachedSessionStore) fill(ctx context.Context, session *Session) {
	data, err := json.Marshal(session)
	if err != nil {
		s.logger.Warn("session cache encode failed", "session_id", session.SessionID, "error", err)
		return
	}
	if err := s.redis.Set(ctx, sessionKey(session.SessionID), data, sessionCacheTTL).Err(); err != nil {
		s.logger.Warn("session cache write failed", "session_id", session.SessionID, "error", err)
	}
}

var _ SessionStore = (*CachedSessionStore)(nil)
