package dto

import "github.com/yigit/coursehub/internal/app/models"

// TopicResponse is a discussion topic with its author.
type TopicResponse struct {
	ID           int64  `json:"id" example:"12"`
	TopicID      string `json:"topic_id" example:"topic_5f1d7c1e"`
	Subject      string `json:"subject" example:"Question about week 3"`
	Message      string `json:"message" example:"Could someone explain the second exercise?"`
	UserID       int64  `json:"user_id" example:"7"`
	AuthorName   string `json:"author_name" example:"Jane Doe"`
	AuthorRole   string `json:"author_role" example:"student"`
	CommentCount int64  `json:"comment_count" example:"3"`
	CreatedAt    string `json:"created_at" example:"2025-01-15T10:00:00Z"`
	UpdatedAt    string `json:"updated_at" example:"2025-01-15T10:00:00Z"`
}

// FromTopic converts a topic model.
func FromTopic(t *models.Topic) TopicResponse {
	return TopicResponse{
		ID:           t.ID,
		TopicID:      t.Key,
		Subject:      t.Subject,
		Message:      t.Message,
		UserID:       t.UserID,
		AuthorName:   t.AuthorName,
		AuthorRole:   string(t.AuthorRole),
		CommentCount: t.CommentCount,
		CreatedAt:    t.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:    t.UpdatedAt.UTC().Format(timestampLayout),
	}
}

// TopicListResponse represents a list of topics with pagination
type TopicListResponse struct {
	Topics     []TopicResponse `json:"topics"`
	Pagination PaginationInfo  `json:"pagination"`
}

// CreateTopicRequest starts a new discussion thread.
type CreateTopicRequest struct {
	TopicID string `json:"topic_id" example:"topic_week3_question"`
	Subject string `json:"subject" example:"Question about week 3"`
	Message string `json:"message" example:"Could someone explain the second exercise?"`
}

// UpdateTopicRequest is a partial topic update.
type UpdateTopicRequest struct {
	Subject *string `json:"subject"`
	Message *string `json:"message"`
}
