package domain

import "github.com/shopspring/decimal"

// UpdateError 单条条目应用失败的记录
type UpdateError struct {
	Line    int    `json:"line"`
	Article string `json:"article,omitempty"`
	Name    string `json:"name,omitempty"`
	Reason  string `json:"reason"`
}

// UpdateResult 价格表应用结果；按输入顺序逐条累积
type UpdateResult struct {
	Success int           `json:"success"`
	Failed  int           `json:"failed"`
	Errors  []UpdateError `json:"errors"`
}

// PreviewItem 预览模式下单条条目的匹配与价差信息
type PreviewItem struct {
	Line         int              `json:"line"`
	Article      string           `json:"article,omitempty"`
	Name         string           `json:"name,omitempty"`
	Price        decimal.Decimal  `json:"price"`
	Found        bool             `json:"found"`
	ProductID    uint             `json:"product_id,omitempty"`
	ProductName  string           `json:"product_name,omitempty"`
	CurrentPrice *decimal.Decimal `json:"current_price,omitempty"`
	PriceChange  *decimal.Decimal `json:"price_change,omitempty"`
}

// PreviewSummary 预览汇总
type PreviewSummary struct {
	Total          int `json:"total"`
	Found          int `json:"found"`
	NotFound       int `json:"not_found"`
	PriceIncreased int `json:"price_increased"`
	PriceDecreased int `json:"price_decreased"`
	PriceUnchanged int `json:"price_unchanged"`
}

// PriceUpdatedEvent 单条价格成功落库后发布的事件
type PriceUpdatedEvent struct {
	ProductID uint            `json:"product_id"`
	Article   string          `json:"article,omitempty"`
	Name      string          `json:"name"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
}
