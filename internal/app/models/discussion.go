package models

import "time"

// Topic is a discussion board thread owned by a user.
type Topic struct {
	ID        int64     `db:"id"`
	Key       string    `db:"topic_key"`
	UserID    int64     `db:"user_id"`
	Subject   string    `db:"subject"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// Joined columns
	AuthorName   string   `db:"author_name"`
	AuthorRole   RoleType `db:"author_role"`
	CommentCount int64    `db:"comment_count"`
}

// TopicUpdate carries the fields of a partial topic update.
type TopicUpdate struct {
	Subject *string
	Message *string
}

// Comment is a reply attached to a topic, assignment, resource or week.
type Comment struct {
	ID        int64     `db:"id"`
	Key       string    `db:"comment_key"`
	ParentID  int64     `db:"parent_id"`
	UserID    int64     `db:"user_id"`
	Text      string    `db:"comment_text"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	AuthorName string   `db:"author_name"`
	AuthorRole RoleType `db:"author_role"`
}
