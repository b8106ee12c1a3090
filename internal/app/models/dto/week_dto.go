package dto

import "github.com/yigit/coursehub/internal/app/models"

// WeekResponse is one week of course content.
type WeekResponse struct {
	ID          int64    `json:"id" example:"2"`
	WeekID      string   `json:"week_id" example:"week_2"`
	Title       string   `json:"title" example:"Week 2: Interfaces"`
	StartDate   string   `json:"start_date" example:"2025-02-10"`
	Description string   `json:"description" example:"Interfaces and embedding"`
	Links       []string `json:"links"`
}

// FromWeek converts a week model.
func FromWeek(w *models.Week) WeekResponse {
	links := w.Links
	if links == nil {
		links = []string{}
	}
	return WeekResponse{
		ID:          w.ID,
		WeekID:      w.Key,
		Title:       w.Title,
		StartDate:   formatDate(w.StartDate),
		Description: w.Description,
		Links:       links,
	}
}

// WeekListResponse represents a list of weeks with pagination
type WeekListResponse struct {
	Weeks      []WeekResponse `json:"weeks"`
	Pagination PaginationInfo `json:"pagination"`
}

// WeekRequest creates a week. StartDate is YYYY-MM-DD.
type WeekRequest struct {
	WeekID      string   `json:"week_id" example:"week_2"`
	Title       string   `json:"title" example:"Week 2: Interfaces"`
	StartDate   string   `json:"start_date" example:"2025-02-10"`
	Description string   `json:"description" example:"Interfaces and embedding"`
	Links       []string `json:"links"`
}

// UpdateWeekRequest is a partial week update.
type UpdateWeekRequest struct {
	Title       *string   `json:"title"`
	StartDate   *string   `json:"start_date"`
	Description *string   `json:"description"`
	Links       *[]string `json:"links"`
}
