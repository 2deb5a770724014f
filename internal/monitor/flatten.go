package monitor

import (
	"time"

	"xhs-monitor/internal/models"
)

// Flatten joins the snapshot with every comment, one record per comment, all stamped with the
// same collection time.
func Flatten(snap models.PostSnapshot, comments []models.CommentRecord, userID, keyword string, collectedAt time.Time) []models.FlatRecord {
	records := make([]models.FlatRecord, 0, len(comments))
	for _, c := range comments {
		records = append(records, models.FlatRecord{
			Keyword:         keyword,
			UserID:          userID,
			NoteID:          snap.NoteID,
			Title:           snap.Title,
			NoteAuthor:      snap.Author,
			NoteLikes:       snap.LikeCount,
			NoteCollects:    snap.CollectCount,
			NoteComments:    snap.CommentCount,
			NoteURL:         snap.URL,
			NoteTime:        snap.PublishedAt,
			NoteLocation:    snap.Location,
			NoteType:        snap.Type,
			NoteContent:     snap.Content,
			CommentID:       c.ID,
			ParentCommentID: c.ParentID,
			CommentAuthor:   c.Author,
			CommentContent:  c.Content,
			CommentLikes:    c.LikeCount,
			CommentLocation: c.Location,
			CommentTime:     c.CreatedAt,
			CollectedAt:     collectedAt,
		})
	}
	return records
}
