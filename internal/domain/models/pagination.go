package models

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type EntityKind string

const (
	KindProject  EntityKind = "project"
	KindTemplate EntityKind = "template"
)

// Pagination отражает последнюю загруженную страницу
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func InitialPagination() Pagination {
	return Pagination{Page: DefaultPage, Limit: DefaultLimit}
}

// Consistent проверяет totalPages == ceil(total / limit)
func (p Pagination) Consistent() bool {
	if p.Limit <= 0 {
		return true
	}
	return p.TotalPages == (p.Total+p.Limit-1)/p.Limit
}

// CanStep сообщает, попадает ли page+step в [1, totalPages]
func (p Pagination) CanStep(step int) bool {
	next := p.Page + step
	return next >= 1 && next <= p.TotalPages
}
