package pager

import (
	"math"

	"github.com/ButyrinIA/feedrank/internal/apperr"
	"github.com/ButyrinIA/feedrank/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// Pager нормализует page/limit; MaxLimit == 0 снимает верхнюю границу
type Pager struct {
	DefaultLimit int
	MaxLimit     int
}

type Page struct {
	Page  int
	Limit int
}

// Skip - количество записей, пропускаемых перед страницей
func (p Page) Skip() int {
	return (p.Page - 1) * p.Limit
}

// Normalize подставляет значения по умолчанию вместо нулей и отвергает отрицательные
func (pg Pager) Normalize(page, limit int) (Page, error) {
	if page < 0 {
		return Page{}, apperr.Validation("page must be >= 1")
	}
	if limit < 0 {
		return Page{}, apperr.Validation("limit must be >= 1")
	}
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = pg.DefaultLimit
		if limit <= 0 {
			limit = DefaultLimit
		}
	}
	if pg.MaxLimit > 0 && limit > pg.MaxLimit {
		limit = pg.MaxLimit
	}
	// (page-1)*limit должен помещаться в int
	if page-1 > math.MaxInt/limit {
		return Page{}, apperr.Validation("page is too large")
	}
	return Page{Page: page, Limit: limit}, nil
}

// Info строит метаданные пагинации: pages = ceil(total/limit)
func (p Page) Info(total int64) models.PageInfo {
	var pages int64
	if total > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return models.PageInfo{Page: p.Page, Limit: p.Limit, Total: total, Pages: pages}
}

// Slice возвращает границы страницы внутри среза длины n;
// отрицательный сдвиг считается выходом за конец
func (p Page) Slice(n int) (start, end int) {
	start = p.Skip()
	if start < 0 || start > n {
		start = n
	}
	end = n
	if p.Limit >= 0 && p.Limit < n-start {
		end = start + p.Limit
	}
	return start, end
}
