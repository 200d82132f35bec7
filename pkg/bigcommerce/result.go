package bigcommerce

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Outcome tags a Result. Every call produces exactly one of them.
type Outcome int

const (
	OutcomeFailure Outcome = iota
	OutcomeEmpty
	OutcomeData
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmpty:
		return "empty"
	case OutcomeData:
		return "data"
	default:
		return "failure"
	}
}

// Result is the envelope returned by every operation.
// HTTP error statuses and undecodable bodies are failures, never Go errors.
type Result[T any] struct {
	Outcome    Outcome
	Data       T
	StatusCode int
	Err        *APIError
	// Body is the raw response body, kept for failures.
	Body []byte
}

func (r Result[T]) Success() bool { return r.Outcome != OutcomeFailure }

func (r Result[T]) HasData() bool { return r.Outcome == OutcomeData }

// Error returns the failure message, or "" for successful results.
func (r Result[T]) Error() string {
	if r.Outcome != OutcomeFailure {
		return ""
	}
	if r.Err == nil {
		return fmt.Sprintf("bigcommerce api error: status=%d", r.StatusCode)
	}
	return r.Err.Error()
}

// NoContent is the payload type of operations that never return a body.
type NoContent struct{}

type Pagination struct {
	Total       int `json:"total"`
	Count       int `json:"count"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// PagedResult is a list result with cursor metadata.
type PagedResult[T any] struct {
	Result[[]T]
	Pagination Pagination
}

func (p PagedResult[T]) HasNextPage() bool {
	return p.Pagination.CurrentPage < p.Pagination.TotalPages
}

// APIError is the parsed error body of a failed call.
type APIError struct {
	Status  int               `json:"status"`
	Title   string            `json:"title"`
	Type    string            `json:"type"`
	Detail  string            `json:"detail"`
	Errors  map[string]string `json:"errors"`
	Message string            `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	parseErrorBody(e, body)

	summary := strings.TrimSpace(e.Title)
	if summary == "" {
		summary = strings.TrimSpace(string(body))
	}
	if summary != "" {
		e.Message = fmt.Sprintf("bigcommerce api error: status=%d body=%s", status, summary)
	} else {
		e.Message = fmt.Sprintf("bigcommerce api error: status=%d", status)
	}
	return e
}

// parseErrorBody understands both v3 problem documents and v2 error arrays:
//
//	{"status":422,"title":"Missing line items","type":"...","errors":{...}}
//	[{"status":400,"message":"The field 'status_id' is invalid."}]
func parseErrorBody(e *APIError, body []byte) {
	trimmed := strings.TrimSpace(string(body))
	switch {
	case strings.HasPrefix(trimmed, "{"):
		var v3 struct {
			Status int             `json:"status"`
			Title  string          `json:"title"`
			Type   string          `json:"type"`
			Detail string          `json:"detail"`
			Errors json.RawMessage `json:"errors"`
		}
		if err := json.Unmarshal(body, &v3); err != nil {
			return
		}
		e.Title, e.Type, e.Detail = v3.Title, v3.Type, v3.Detail
		// errors is an object on most endpoints and an empty array on some.
		var fields map[string]string
		if json.Unmarshal(v3.Errors, &fields) == nil && len(fields) > 0 {
			e.Errors = fields
		}
	case strings.HasPrefix(trimmed, "["):
		var v2 []struct {
			Status  int    `json:"status"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &v2); err != nil || len(v2) == 0 {
			return
		}
		msgs := make([]string, 0, len(v2))
		for _, m := range v2 {
			if m.Message != "" {
				msgs = append(msgs, m.Message)
			}
		}
		e.Title = strings.Join(msgs, "; ")
	}
}
