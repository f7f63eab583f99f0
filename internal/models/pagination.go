package models

type PaginationParams struct {
	Skip  int
	Limit int
}

// ListResponse wraps paged records. Count is always the total number of
// matching records, independent of how many Data carries.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}
