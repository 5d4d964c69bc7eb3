package order

import "github.com/google/uuid"

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Ids      []uuid.UUID `json:"ids,omitempty"`
	Status   Status      `json:"status,omitempty"`
	PhoneKey string      `json:"phoneKey,omitempty"`
	Limit    int         `json:"limit,omitempty"`
	Offset   int         `json:"offset,omitempty"`
}

// Pagination describes an offset/limit page.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes page counts for total matching rows.
func NewPagination(page, limit, total int) Pagination {
	p := Pagination{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		p.TotalPages = (total + limit - 1) / limit
	}

	return p
}

// Page is one page of orders.
type Page struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// ListModel is an admin list request. An empty or "all" status means no status filter;
// Phone matches on the normalized phone.
type ListModel struct {
	Status string
	Phone  string
	Page   int
	Limit  int
}
