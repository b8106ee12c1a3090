package dto

import "github.com/yigit/coursehub/internal/app/models"

// AssignmentResponse is a piece of coursework.
type AssignmentResponse struct {
	ID          int64    `json:"id" example:"4"`
	Title       string   `json:"title" example:"Lab 2"`
	Description string   `json:"description" example:"Implement a linked list."`
	DueDate     string   `json:"due_date" example:"2025-03-01"`
	Files       []string `json:"files"`
	CreatedAt   string   `json:"created_at" example:"2025-01-15T10:00:00Z"`
}

// FromAssignment converts an assignment model.
func FromAssignment(a *models.Assignment) AssignmentResponse {
	files := a.Files
	if files == nil {
		files = []string{}
	}
	return AssignmentResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		DueDate:     formatDate(a.DueDate),
		Files:       files,
		CreatedAt:   a.CreatedAt.UTC().Format(timestampLayout),
	}
}

// AssignmentListResponse represents a list of assignments with pagination
type AssignmentListResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
	Pagination  PaginationInfo       `json:"pagination"`
}

// AssignmentRequest creates an assignment. DueDate is YYYY-MM-DD.
type AssignmentRequest struct {
	Title       string   `json:"title" example:"Lab 2"`
	Description string   `json:"description" example:"Implement a linked list."`
	DueDate     string   `json:"due_date" example:"2025-03-01"`
	Files       []string `json:"files"`
}

// UpdateAssignmentRequest is a partial assignment update.
type UpdateAssignmentRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	DueDate     *string   `json:"due_date"`
	Files       *[]string `json:"files"`
}
