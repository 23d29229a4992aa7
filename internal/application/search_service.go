// Package application wires the search backends into the operations the
// MCP tools expose.
package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/outliyr/x-search-mcp/internal/domain/search"
)

// ErrNoBackend is returned when neither Bird nor xAI can serve a search.
var ErrNoBackend = errors.New("both Bird CLI and xAI API unavailable")

// SearchService runs searches with the Bird CLI first and falls back to
// the xAI API when Bird is unauthenticated, failing, or empty-handed.
type SearchService struct {
	bird       search.Searcher
	birdStatus search.StatusReporter
	xai        search.Searcher
	logger     *slog.Logger
}

// NewSearchService creates the service. xai may be nil when no API key is
// configured; birdStatus may be nil only in tests.
func NewSearchService(bird search.Searcher, birdStatus search.StatusReporter, xai search.Searcher, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		bird:       bird,
		birdStatus: birdStatus,
		xai:        xai,
		logger:     logger,
	}
}

// Search tries Bird, then xAI. A Bird result counts only when it actually
// carries posts, matching the upstream behavior of treating an empty Bird
// response as a miss.
func (s *SearchService) Search(ctx context.Context, q search.Query) (*search.Result, error) {
	log := s.logger.With(
		slog.String("request_id", uuid.NewString()),
		slog.String("topic", q.Topic),
		slog.String("from", q.FromDate()),
		slog.String("to", q.ToDate()),
		slog.String("depth", string(q.Depth)),
	)

	if res := s.tryBird(ctx, log, q); res != nil {
		return res, nil
	}

	if s.xai == nil {
		log.Warn("no xAI fallback configured")
		return nil, ErrNoBackend
	}
	res, err := s.xai.Search(ctx, q)
	if err != nil {
		log.Error("xAI search failed", slog.Any("error", err))
		return nil, ErrNoBackend
	}
	log.Info("search served", slog.String("source", string(res.Source)), slog.Int("posts", len(res.Posts)))
	return res, nil
}

func (s *SearchService) tryBird(ctx context.Context, log *slog.Logger, q search.Query) *search.Result {
	if s.bird == nil || s.birdStatus == nil {
		return nil
	}

	status, err := s.birdStatus.Status(ctx)
	if err != nil {
		log.Warn("bird status check failed", slog.Any("error", err))
		return nil
	}
	if !status.Authenticated {
		log.Info("bird not authenticated, skipping")
		return nil
	}

	res, err := s.bird.Search(ctx, q)
	if err != nil {
		log.Warn("bird search failed", slog.Any("error", err))
		return nil
	}
	if len(res.Posts) == 0 {
		log.Info("bird returned no posts, falling back")
		return nil
	}
	log.Info("search served", slog.String("source", string(res.Source)), slog.Int("posts", len(res.Posts)))
	return res
}

// CheckAuth reports Bird authentication state. Adapter failures degrade to
// an unauthenticated status with the error in Detail rather than failing
// the tool call.
func (s *SearchService) CheckAuth(ctx context.Context) *search.AuthStatus {
	if s.birdStatus == nil {
		return &search.AuthStatus{Authenticated: false, Detail: "bird CLI not configured"}
	}
	status, err := s.birdStatus.Status(ctx)
	if err != nil {
		s.logger.Warn("bird status check failed", slog.Any("error", err))
		return &search.AuthStatus{Authenticated: false, Detail: err.Error()}
	}
	return status
}
