package hdx

import (
	"fmt"

	"github.com/mkoziy/hdxinfo/internal/models"
)

// envelope is the CKAN action API wrapper.
type envelope[T any] struct {
	Success bool      `json:"success"`
	Result  T         `json:"result"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError is the error body CKAN returns with success=false.
type APIError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// SearchResponse is the result of package_search.
type SearchResponse struct {
	Count   int              `json:"count"`
	Results []models.Dataset `json:"results"`
}
