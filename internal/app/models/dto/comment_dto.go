package dto

import "github.com/yigit/coursehub/internal/app/models"

// CommentResponse is a reply or comment with its author.
type CommentResponse struct {
	ID         int64  `json:"id" example:"31"`
	CommentID  string `json:"comment_id" example:"reply_8a0c2f4b"`
	ParentID   int64  `json:"parent_id" example:"12"`
	UserID     int64  `json:"user_id" example:"7"`
	AuthorName string `json:"author_name" example:"Jane Doe"`
	AuthorRole string `json:"author_role" example:"student"`
	Text       string `json:"text" example:"Thanks, that helped."`
	CreatedAt  string `json:"created_at" example:"2025-01-15T10:00:00Z"`
}

// FromComment converts a comment model.
func FromComment(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		CommentID:  c.Key,
		ParentID:   c.ParentID,
		UserID:     c.UserID,
		AuthorName: c.AuthorName,
		AuthorRole: string(c.AuthorRole),
		Text:       c.Text,
		CreatedAt:  c.CreatedAt.UTC().Format(timestampLayout),
	}
}

// FromComments converts a slice, never returning nil.
func FromComments(cs []*models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, FromComment(c))
	}
	return out
}

// CreateCommentRequest adds a comment. ReplyID is the optional public key of a
// topic reply.
type CreateCommentRequest struct {
	ReplyID string `json:"reply_id" example:"reply_week3_answer"`
	Text    string `json:"text" example:"Thanks, that helped."`
}
