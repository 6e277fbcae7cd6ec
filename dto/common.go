package dto

// PageQuery là tham số phân trang chung
type PageQuery struct {
	Page  int `form:"page" validate:"min=0"`
	Limit int `form:"limit" validate:"min=0,max=100"`
}

func (q PageQuery) Normalize() (int, int) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return page, limit
}
