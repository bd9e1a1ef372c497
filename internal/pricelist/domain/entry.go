package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Entry 价格表中成功解析出的一行：SKU 编码和/或商品名称，加上新价格。
// 至少要有 Article 或 Name 之一；Price 必须为正数。
type Entry struct {
	Article string
	Name    string
	Price   decimal.Decimal
}

// Key 去重键：优先用 SKU 编码，否则用名称，均做小写折叠
func (e Entry) Key() string {
	if e.Article != "" {
		return strings.ToLower(e.Article)
	}
	return strings.ToLower(e.Name)
}
