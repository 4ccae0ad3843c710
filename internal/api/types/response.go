package types

// PaginatedResponse defines a generic structure for paginated API responses.
// T represents the type of data contained in the 'Data' slice.
type PaginatedResponse[T any] struct {
	Data   []T `json:"data"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// NewPaginatedResponse wraps a page of results. A nil page is rendered as [].
func NewPaginatedResponse[T any](data []T, limit, offset int) PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	return PaginatedResponse[T]{Data: data, Limit: limit, Offset: offset, Count: len(data)}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse wraps a single resource with a human-readable message.
type DataResponse[T any] struct {
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// HealthResponse reports process and database health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
