package domain

import "errors"

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrArticleTaken SKU 编码已被占用
	ErrArticleTaken = errors.New("article already taken")
)
