// internal/parser/interface.go
package parser

import (
	"encoding/json"

	"xhs-monitor/internal/models"
)

// Parser turns raw platform responses into domain values or classified errors.
type Parser interface {
	ParseNoteFeed(statusCode int, body json.RawMessage) (models.PostSnapshot, error)
	ParseCommentPage(statusCode int, body json.RawMessage) (CommentPage, error)
	ParseReplyPage(statusCode int, body json.RawMessage, rootID string) (ReplyPage, error)
	ParseSearchPage(statusCode int, body json.RawMessage) (SearchPage, error)
}
