package dto

import "github.com/yigit/coursehub/internal/app/models"

// ResourceResponse is a shared course link.
type ResourceResponse struct {
	ID          int64  `json:"id" example:"9"`
	Title       string `json:"title" example:"Go tour"`
	Description string `json:"description" example:"Interactive introduction"`
	Link        string `json:"link" example:"https://go.dev/tour"`
	CreatedAt   string `json:"created_at" example:"2025-01-15T10:00:00Z"`
}

// FromResource converts a course resource model.
func FromResource(r *models.CourseResource) ResourceResponse {
	return ResourceResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Link:        r.Link,
		CreatedAt:   r.CreatedAt.UTC().Format(timestampLayout),
	}
}

// ResourceListResponse represents a list of resources with pagination
type ResourceListResponse struct {
	Resources  []ResourceResponse `json:"resources"`
	Pagination PaginationInfo     `json:"pagination"`
}

// ResourceRequest creates a resource.
type ResourceRequest struct {
	Title       string `json:"title" example:"Go tour"`
	Description string `json:"description" example:"Interactive introduction"`
	Link        string `json:"link" example:"https://go.dev/tour"`
}

// UpdateResourceRequest is a partial resource update.
type UpdateResourceRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Link        *string `json:"link"`
}
