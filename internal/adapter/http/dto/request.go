package dto

import (
	"net/url"
	"strconv"

	"github.com/iho/banky/internal/usecase"
)

// ListDocumentsRequest holds the query parameters of the document listing.
type ListDocumentsRequest struct {
	Status string
	Limit  int
	Offset int
}

// ListDocumentsFromQuery reads status, limit and offset. Malformed numbers fall back to zero,
// which the use case replaces with its defaults.
func ListDocumentsFromQuery(q url.Values) ListDocumentsRequest {
	return ListDocumentsRequest{
		Status: q.Get("status"),
		Limit:  atoiOrZero(q.Get("limit")),
		Offset: atoiOrZero(q.Get("offset")),
	}
}

// ToUseCaseInput converts to use case input.
func (r ListDocumentsRequest) ToUseCaseInput() usecase.ListDocumentsInput {
	return usecase.ListDocumentsInput{
		Status: r.Status,
		Limit:  r.Limit,
		Offset: r.Offset,
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
