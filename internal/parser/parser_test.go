package parser_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhs-monitor/internal/apperrors"
	"xhs-monitor/internal/parser"
)

func TestParseNoteFeed(t *testing.T) {
	p := parser.NewXhsParser()

	data := []byte(`{
		"code": 0,
		"success": true,
		"msg": "成功",
		"data": {
			"items": [{
				"model_type": "note",
				"note_card": {
					"note_id": "683d3cc0000000002300d1a3",
					"title": "周末探店",
					"desc": "第一行\n第二行",
					"type": "normal",
					"ip_location": "上海",
					"time": 1748844736000,
					"user": {"nickname": "小红"},
					"interact_info": {
						"liked_count": "1.2万",
						"collected_count": "356",
						"comment_count": "12"
					}
				}
			}]
		}
	}`)

	snap, err := p.ParseNoteFeed(http.StatusOK, json.RawMessage(data))
	require.NoError(t, err)

	assert.Equal(t, "683d3cc0000000002300d1a3", snap.NoteID)
	assert.Equal(t, "周末探店", snap.Title)
	assert.Equal(t, "小红", snap.Author)
	assert.Equal(t, 12000, snap.LikeCount)
	assert.Equal(t, 356, snap.CollectCount)
	assert.Equal(t, 12, snap.CommentCount)
	assert.Equal(t, "第一行第二行", snap.Content)
	assert.Equal(t, "normal", snap.Type)
	assert.Equal(t, "上海", snap.Location)
	assert.Equal(t, time.UnixMilli(1748844736000).UTC(), snap.PublishedAt)
}

func TestParseNoteFeedFallsBackToModelType(t *testing.T) {
	p := parser.NewXhsParser()

	data := []byte(`{"code":0,"data":{"items":[{"model_type":"video","note_card":{"note_id":"n1","interact_info":{"comment_count":3}}}]}}`)

	snap, err := p.ParseNoteFeed(http.StatusOK, json.RawMessage(data))
	require.NoError(t, err)
	assert.Equal(t, "video", snap.Type)
	assert.Equal(t, 3, snap.CommentCount)
}

func TestParseNoteFeedClassification(t *testing.T) {
	p := parser.NewXhsParser()

	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"auth status 461", 461, `<html></html>`, apperrors.ErrAuthRejected},
		{"auth status 401", http.StatusUnauthorized, `{"code":-100}`, apperrors.ErrAuthRejected},
		{"session expired code", http.StatusOK, `{"code":-100,"msg":"登录已过期"}`, apperrors.ErrAuthRejected},
		{"deleted note", http.StatusOK, `{"code":-510000,"msg":"笔记不存在"}`, apperrors.ErrPostUnavailable},
		{"empty items", http.StatusOK, `{"code":0,"data":{"items":[]}}`, apperrors.ErrPostUnavailable},
		{"other code", http.StatusOK, `{"code":-1,"msg":"系统错误"}`, apperrors.ErrPostUnavailable},
		{"server error", http.StatusBadGateway, `bad gateway`, apperrors.ErrPostUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseNoteFeed(tt.status, json.RawMessage(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseCommentPage(t *testing.T) {
	p := parser.NewXhsParser()

	data := []byte(`{
		"code": 0,
		"success": true,
		"data": {
			"cursor": "c2",
			"has_more": true,
			"comments": [
				{
					"id": "root1",
					"note_id": "n1",
					"content": "好看",
					"like_count": "3",
					"ip_location": "北京",
					"create_time": 1748844736000,
					"user_info": {"nickname": "甲"},
					"sub_comments": [
						{"id": "r1", "content": "同意", "like_count": 1, "create_time": 1748844737000, "user_info": {"nickname": "乙"}}
					],
					"sub_comment_has_more": true,
					"sub_comment_cursor": "sc1"
				},
				{
					"id": "root2",
					"content": "路过",
					"like_count": "",
					"create_time": "1748844738000",
					"user_info": {"nickname": "丙"},
					"sub_comments": [],
					"sub_comment_has_more": false
				}
			]
		}
	}`)

	page, err := p.ParseCommentPage(http.StatusOK, json.RawMessage(data))
	require.NoError(t, err)

	assert.Equal(t, "c2", page.Cursor)
	assert.True(t, page.HasMore)
	require.Len(t, page.Threads, 2)

	first := page.Threads[0]
	assert.Equal(t, "root1", first.Comment.ID)
	assert.Equal(t, "甲", first.Comment.Author)
	assert.Equal(t, 3, first.Comment.LikeCount)
	assert.Equal(t, "北京", first.Comment.Location)
	assert.Empty(t, first.Comment.ParentID)
	assert.True(t, first.HasMoreReplies)
	assert.Equal(t, "sc1", first.ReplyCursor)
	require.Len(t, first.Replies, 1)
	assert.Equal(t, "r1", first.Replies[0].ID)
	assert.Equal(t, "root1", first.Replies[0].ParentID)

	second := page.Threads[1]
	assert.Equal(t, 0, second.Comment.LikeCount)
	assert.Equal(t, time.UnixMilli(1748844738000).UTC(), second.Comment.CreatedAt)
	assert.False(t, second.HasMoreReplies)
	assert.Empty(t, second.Replies)
}

func TestParseCommentPageFailures(t *testing.T) {
	p := parser.NewXhsParser()

	_, err := p.ParseCommentPage(http.StatusOK, json.RawMessage(`{"code":300012,"msg":"账号异常"}`))
	assert.ErrorIs(t, err, apperrors.ErrAuthRejected)

	_, err = p.ParseCommentPage(http.StatusOK, json.RawMessage(`{"code":-1,"msg":"busy"}`))
	assert.ErrorIs(t, err, apperrors.ErrCommentFetch)

	_, err = p.ParseCommentPage(http.StatusOK, json.RawMessage(`not json`))
	assert.ErrorIs(t, err, apperrors.ErrCommentFetch)
}

func TestParseReplyPage(t *testing.T) {
	p := parser.NewXhsParser()

	data := []byte(`{"code":0,"data":{"cursor":123,"has_more":false,"comments":[
		{"id":"r2","content":"a","user_info":{"nickname":"丁"}},
		{"id":"r3","content":"b","user_info":{"nickname":"戊"}}
	]}}`)

	page, err := p.ParseReplyPage(http.StatusOK, json.RawMessage(data), "root1")
	require.NoError(t, err)

	assert.Equal(t, "123", page.Cursor)
	assert.False(t, page.HasMore)
	require.Len(t, page.Replies, 2)
	assert.Equal(t, "r2", page.Replies[0].ID)
	assert.Equal(t, "root1", page.Replies[0].ParentID)
	assert.Equal(t, "root1", page.Replies[1].ParentID)
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"42", 42},
		{"1.2万", 12000},
		{"3w", 30000},
		{"10+", 10},
		{"1,024", 1024},
		{"1亿", 100000000},
	}
	for _, tt := range tests {
		got, err := parser.ParseCount(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parser.ParseCount("lots")
	assert.Error(t, err)
}

func TestParseSearchPage(t *testing.T) {
	p := parser.NewXhsParser()

	data := []byte(`{
		"code": 0,
		"success": true,
		"data": {
			"has_more": true,
			"items": [
				{"id": "n1", "model_type": "note", "xsec_token": "tok1",
				 "note_card": {"display_title": "手冲咖啡", "type": "normal", "user": {"nickname": "阿木"}, "interact_info": {"liked_count": "1.5万"}}},
				{"id": "hot_query_1", "model_type": "hot_query"},
				{"id": "n2", "model_type": "note", "xsec_token": "tok2",
				 "note_card": {"display_title": "豆子推荐", "type": "video", "user": {"nickname": "小林"}, "interact_info": {"liked_count": 88}}}
			]
		}
	}`)

	page, err := p.ParseSearchPage(http.StatusOK, json.RawMessage(data))
	require.NoError(t, err)

	assert.True(t, page.HasMore)
	require.Len(t, page.Hits, 2)
	assert.Equal(t, "n1", page.Hits[0].NoteID)
	assert.Equal(t, "手冲咖啡", page.Hits[0].Title)
	assert.Equal(t, "阿木", page.Hits[0].Author)
	assert.Equal(t, 15000, page.Hits[0].LikeCount)
	assert.Equal(t, "tok1", page.Hits[0].Token)
	assert.Empty(t, page.Hits[0].URL)
	assert.Equal(t, "video", page.Hits[1].Type)
	assert.Equal(t, 88, page.Hits[1].LikeCount)
}

func TestParseSearchPageClassification(t *testing.T) {
	p := parser.NewXhsParser()

	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"auth code", http.StatusOK, `{"code":-100,"msg":"登录已过期"}`, apperrors.ErrAuthRejected},
		{"other code", http.StatusOK, `{"code":-1,"msg":"系统错误"}`, apperrors.ErrSearchFailed},
		{"not json", http.StatusOK, `oops`, apperrors.ErrSearchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseSearchPage(tt.status, json.RawMessage(tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
