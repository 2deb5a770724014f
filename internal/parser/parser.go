// internal/parser/parser.go
package parser

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"xhs-monitor/internal/apperrors"
	"xhs-monitor/internal/models"
)

// Thread is one top-level comment with the replies the page inlined for it.
type Thread struct {
	Comment        models.CommentRecord
	Replies        []models.CommentRecord
	HasMoreReplies bool
	ReplyCursor    string
}

type CommentPage struct {
	Threads []Thread
	Cursor  string
	HasMore bool
}

type ReplyPage struct {
	Replies []models.CommentRecord
	Cursor  string
	HasMore bool
}

// Platform codes meaning the session was refused.
var authCodes = map[int]bool{
	-100:   true,
	-101:   true,
	-104:   true,
	300011: true,
	300012: true,
	300013: true,
	300015: true,
}

// Platform codes meaning the post is gone or hidden.
var unavailableCodes = map[int]bool{
	-510000: true,
	-510001: true,
	300031:  true,
}

type envelope struct {
	Code    int             `json:"code"`
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

type rawComment struct {
	ID         string `json:"id"`
	NoteID     string `json:"note_id"`
	Content    string `json:"content"`
	LikeCount  Count  `json:"like_count"`
	IPLocation string `json:"ip_location"`
	CreateTime Millis `json:"create_time"`
	UserInfo   struct {
		Nickname string `json:"nickname"`
	} `json:"user_info"`
	SubComments       []rawComment `json:"sub_comments"`
	SubCommentHasMore bool         `json:"sub_comment_has_more"`
	SubCommentCursor  Text         `json:"sub_comment_cursor"`
}

func (c rawComment) record(parentID string) models.CommentRecord {
	return models.CommentRecord{
		ID:        c.ID,
		Author:    c.UserInfo.Nickname,
		Content:   c.Content,
		LikeCount: int(c.LikeCount),
		Location:  c.IPLocation,
		CreatedAt: c.CreateTime.Time,
		ParentID:  parentID,
	}
}

type commentData struct {
	Comments []rawComment `json:"comments"`
	Cursor   Text         `json:"cursor"`
	HasMore  bool         `json:"has_more"`
}

type feedData struct {
	Items []struct {
		ModelType string `json:"model_type"`
		NoteCard  struct {
			NoteID     string `json:"note_id"`
			Title      string `json:"title"`
			Desc       string `json:"desc"`
			Type       string `json:"type"`
			IPLocation string `json:"ip_location"`
			Time       Millis `json:"time"`
			User       struct {
				Nickname string `json:"nickname"`
			} `json:"user"`
			InteractInfo struct {
				LikedCount     Count `json:"liked_count"`
				CollectedCount Count `json:"collected_count"`
				CommentCount   Count `json:"comment_count"`
			} `json:"interact_info"`
		} `json:"note_card"`
	} `json:"items"`
}

// SearchPage is one page of keyword search results. Hit URLs are left for the caller to build.
type SearchPage struct {
	Hits    []models.SearchHit
	HasMore bool
}

type searchData struct {
	Items []struct {
		ID        string `json:"id"`
		ModelType string `json:"model_type"`
		XsecToken string `json:"xsec_token"`
		NoteCard  *struct {
			DisplayTitle string `json:"display_title"`
			Type         string `json:"type"`
			User         struct {
				Nickname string `json:"nickname"`
			} `json:"user"`
			InteractInfo struct {
				LikedCount Count `json:"liked_count"`
			} `json:"interact_info"`
		} `json:"note_card"`
	} `json:"items"`
	HasMore bool `json:"has_more"`
}

type XhsParser struct{}

func NewXhsParser() *XhsParser {
	return &XhsParser{}
}

// decode reads the envelope and maps any failure to a taxonomy kind. otherwise is used for non-zero
// codes that are neither auth nor availability failures.
func decode(op string, statusCode int, body json.RawMessage, otherwise apperrors.Kind) (envelope, error) {
	var env envelope

	if isAuthStatus(statusCode) {
		return env, apperrors.New(apperrors.KindAuthRejected, op, fmt.Sprintf("http status %d", statusCode))
	}

	if err := json.Unmarshal(body, &env); err != nil {
		if statusCode >= http.StatusBadRequest {
			return env, apperrors.New(otherwise, op, fmt.Sprintf("http status %d", statusCode))
		}
		return env, apperrors.Wrap(otherwise, op, fmt.Errorf("decode envelope: %w", err))
	}

	switch {
	case authCodes[env.Code]:
		return env, apperrors.New(apperrors.KindAuthRejected, op, describe(env))
	case unavailableCodes[env.Code]:
		return env, apperrors.New(apperrors.KindPostUnavailable, op, describe(env))
	case env.Code != 0:
		return env, apperrors.New(otherwise, op, describe(env))
	case statusCode >= http.StatusBadRequest:
		return env, apperrors.New(otherwise, op, fmt.Sprintf("http status %d", statusCode))
	}

	return env, nil
}

func isAuthStatus(statusCode int) bool {
	return statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden || statusCode == 461
}

func describe(env envelope) string {
	if env.Msg == "" {
		return fmt.Sprintf("code %d", env.Code)
	}
	return fmt.Sprintf("code %d: %s", env.Code, env.Msg)
}

func (p *XhsParser) ParseNoteFeed(statusCode int, body json.RawMessage) (models.PostSnapshot, error) {
	env, err := decode("parse note feed", statusCode, body, apperrors.KindPostUnavailable)
	if err != nil {
		return models.PostSnapshot{}, err
	}

	var feed feedData
	if err := json.Unmarshal(env.Data, &feed); err != nil {
		return models.PostSnapshot{}, apperrors.Wrap(apperrors.KindPostUnavailable, "parse note feed", fmt.Errorf("decode feed data: %w", err))
	}
	if len(feed.Items) == 0 {
		return models.PostSnapshot{}, apperrors.New(apperrors.KindPostUnavailable, "parse note feed", "feed returned no items")
	}

	item := feed.Items[0]
	card := item.NoteCard

	noteType := card.Type
	if noteType == "" {
		noteType = item.ModelType
	}

	return models.PostSnapshot{
		NoteID:       card.NoteID,
		Title:        card.Title,
		Author:       card.User.Nickname,
		LikeCount:    int(card.InteractInfo.LikedCount),
		CollectCount: int(card.InteractInfo.CollectedCount),
		CommentCount: int(card.InteractInfo.CommentCount),
		Content:      stripNewlines(card.Desc),
		Type:         noteType,
		Location:     card.IPLocation,
		PublishedAt:  card.Time.Time,
	}, nil
}

func (p *XhsParser) ParseCommentPage(statusCode int, body json.RawMessage) (CommentPage, error) {
	env, err := decode("parse comment page", statusCode, body, apperrors.KindCommentFetch)
	if err != nil {
		return CommentPage{}, err
	}

	var data commentData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return CommentPage{}, apperrors.Wrap(apperrors.KindCommentFetch, "parse comment page", fmt.Errorf("decode comment data: %w", err))
	}

	page := CommentPage{
		Cursor:  string(data.Cursor),
		HasMore: data.HasMore,
	}
	for _, c := range data.Comments {
		thread := Thread{
			Comment:        c.record(""),
			HasMoreReplies: c.SubCommentHasMore,
			ReplyCursor:    string(c.SubCommentCursor),
		}
		for _, sub := range c.SubComments {
			thread.Replies = append(thread.Replies, sub.record(c.ID))
		}
		page.Threads = append(page.Threads, thread)
	}

	return page, nil
}

func (p *XhsParser) ParseReplyPage(statusCode int, body json.RawMessage, rootID string) (ReplyPage, error) {
	env, err := decode("parse reply page", statusCode, body, apperrors.KindCommentFetch)
	if err != nil {
		return ReplyPage{}, err
	}

	var data commentData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return ReplyPage{}, apperrors.Wrap(apperrors.KindCommentFetch, "parse reply page", fmt.Errorf("decode reply data: %w", err))
	}

	page := ReplyPage{
		Cursor:  string(data.Cursor),
		HasMore: data.HasMore,
	}
	for _, c := range data.Comments {
		page.Replies = append(page.Replies, c.record(rootID))
	}

	return page, nil
}

// ParseSearchPage keeps only post items. Query suggestions and other cards carry no note_card
// and are dropped.
func (p *XhsParser) ParseSearchPage(statusCode int, body json.RawMessage) (SearchPage, error) {
	env, err := decode("parse search page", statusCode, body, apperrors.KindSearchFailed)
	if err != nil {
		return SearchPage{}, err
	}

	var data searchData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return SearchPage{}, apperrors.Wrap(apperrors.KindSearchFailed, "parse search page", fmt.Errorf("decode search data: %w", err))
		}
	}

	page := SearchPage{HasMore: data.HasMore}
	for _, item := range data.Items {
		if item.NoteCard == nil || item.ID == "" {
			continue
		}
		page.Hits = append(page.Hits, models.SearchHit{
			NoteID:    item.ID,
			Title:     item.NoteCard.DisplayTitle,
			Author:    item.NoteCard.User.Nickname,
			LikeCount: int(item.NoteCard.InteractInfo.LikedCount),
			Type:      item.NoteCard.Type,
			Token:     item.XsecToken,
		})
	}

	return page, nil
}

func stripNewlines(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}
