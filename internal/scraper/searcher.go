package scraper

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"xhs-monitor/internal/apperrors"
	"xhs-monitor/internal/client"
	"xhs-monitor/internal/locator"
	"xhs-monitor/internal/models"
	"xhs-monitor/internal/parser"
)

// searchSource is the share source the web client tags search results with.
const searchSource = "pc_feed"

// Searcher finds posts by keyword, one result page at a time.
type Searcher interface {
	SearchNotes(ctx context.Context, session models.Session, keyword string, page int) (parser.SearchPage, error)
}

type noteSearcher struct {
	client  client.XhsClientInterface
	parser  parser.Parser
	locator *locator.Locator
	logger  *zap.Logger
}

func NewNoteSearcher(c client.XhsClientInterface, p parser.Parser, loc *locator.Locator, logger *zap.Logger) Searcher {
	if loc == nil {
		loc = locator.New("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &noteSearcher{client: c, parser: p, locator: loc, logger: logger}
}

// SearchNotes returns hits whose URL is a monitorable explore URL carrying the search token.
func (s *noteSearcher) SearchNotes(ctx context.Context, session models.Session, keyword string, page int) (parser.SearchPage, error) {
	resp, err := s.client.SearchNotes(ctx, session, keyword, page)
	if err != nil {
		if ctx.Err() != nil {
			return parser.SearchPage{}, ctx.Err()
		}
		if errors.Is(err, client.ErrUnusableSession) {
			return parser.SearchPage{}, apperrors.Wrap(apperrors.KindAuthRejected, "search notes", err)
		}
		return parser.SearchPage{}, apperrors.Wrap(apperrors.KindPlatformUnavailable, "search notes", err)
	}

	result, err := s.parser.ParseSearchPage(resp.StatusCode, resp.Body)
	if err != nil {
		s.logger.Info("search page rejected",
			zap.String("keyword", keyword),
			zap.Int("page", page),
			zap.Int64("session_id", session.ID),
			zap.String("kind", string(apperrors.KindOf(err))),
			zap.Error(err))
		return parser.SearchPage{}, err
	}

	for i := range result.Hits {
		result.Hits[i].URL = s.locator.ExploreURL(result.Hits[i].NoteID, result.Hits[i].Token, searchSource)
	}

	s.logger.Debug("search page fetched",
		zap.String("keyword", keyword),
		zap.Int("page", page),
		zap.Int("hits", len(result.Hits)),
		zap.Bool("has_more", result.HasMore))

	return result, nil
}
