package dto

import "time"

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success   bool         `json:"success" example:"true"`
	Message   string       `json:"message,omitempty" example:"Operation completed successfully"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewSuccessResponse wraps data in a successful envelope.
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewErrorResponse wraps an error detail; the detail message is repeated at the top level.
func NewErrorResponse(detail *ErrorDetail) APIResponse {
	resp := APIResponse{
		Success:   false,
		Error:     detail,
		Timestamp: time.Now(),
	}
	if detail != nil {
		resp.Message = detail.Message
	}
	return resp
}

// PaginationInfo describes the page returned by a list endpoint.
type PaginationInfo struct {
	CurrentPage int   `json:"current_page" example:"1"`
	TotalPages  int   `json:"total_pages" example:"3"`
	PageSize    int   `json:"page_size" example:"50"`
	TotalItems  int64 `json:"total_items" example:"120"`
}

// ListQuery documents the shared list parameters.
type ListQuery struct {
	Search string `form:"search"`
	Sort   string `form:"sort"`
	Order  string `form:"order" enums:"asc,desc"`
	Page   int    `form:"page"`
	Size   int    `form:"size"`
}

// MessageResponse is returned by operations that have no payload.
type MessageResponse struct {
	Message string `json:"message" example:"Deleted"`
}

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05Z07:00"
)

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
