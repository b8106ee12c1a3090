package models

import "time"

// Assignment is a piece of coursework with a due date and attached files.
type Assignment struct {
	ID          int64
	Title       string
	Description string
	DueDate     time.Time
	Files       []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AssignmentUpdate carries the fields of a partial assignment update.
type AssignmentUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Files       *[]string
}

// CourseResource is a link or document shared with the course.
type CourseResource struct {
	ID          int64
	Title       string
	Description string
	Link        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CourseResourceUpdate carries the fields of a partial resource update.
type CourseResourceUpdate struct {
	Title       *string
	Description *string
	Link        *string
}

// Week is a course-week content unit.
type Week struct {
	ID          int64
	Key         string
	Title       string
	StartDate   time.Time
	Description string
	Links       []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WeekUpdate carries the fields of a partial week update.
type WeekUpdate struct {
	Title       *string
	StartDate   *time.Time
	Description *string
	Links       *[]string
}
