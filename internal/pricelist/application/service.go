package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teleshop/storefront/internal/pricelist/domain"
	"github.com/teleshop/storefront/pkg/logger"
)

// ErrEmptyPriceList 解析后没有任何条目；调用方应返回 400
var ErrEmptyPriceList = errors.New(domain.ErrEmptyMessage)

// ValidationError 提交路径上的阻断性校验警告
type ValidationError struct {
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("price list validation failed: %s", strings.Join(e.Warnings, "; "))
}

// EventPublisher 价格事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}

// CacheInvalidator 商品缓存失效接口
type CacheInvalidator interface {
	DeletePattern(ctx context.Context, pattern string) error
}

// Preview 预览响应：逐条匹配与价差信息，加汇总，不落库
type Preview struct {
	Items            []domain.PreviewItem  `json:"items"`
	Summary          domain.PreviewSummary `json:"summary"`
	ValidationErrors []string              `json:"validationErrors"`
}

// Service 价格表摄取服务：解析、校验、对目录对账并应用
type Service struct {
	matcher   *domain.Matcher
	writer    domain.PriceWriter
	publisher EventPublisher
	cache     CacheInvalidator
	topic     string
}

// NewService 创建价格表服务；publisher 与 cache 可为 nil
func NewService(
	catalog domain.Catalog,
	writer domain.PriceWriter,
	publisher EventPublisher,
	cache CacheInvalidator,
	topic string,
) *Service {
	return &Service{
		matcher:   domain.NewMatcher(catalog),
		writer:    writer,
		publisher: publisher,
		cache:     cache,
		topic:     topic,
	}
}

// PreviewContent 干跑整个管线：解析、校验、匹配并计算价差，不写任何数据。
// 匹配逻辑与 Apply 共用同一个 Matcher，保证预览与提交不发散。
func (s *Service) PreviewContent(ctx context.Context, content string) (*Preview, error) {
	entries := domain.Parse(content)
	if len(entries) == 0 {
		return nil, ErrEmptyPriceList
	}
	warnings := domain.Validate(entries)

	preview := &Preview{
		Items:            make([]domain.PreviewItem, 0, len(entries)),
		Summary:          domain.PreviewSummary{Total: len(entries)},
		ValidationErrors: warnings,
	}
	if preview.ValidationErrors == nil {
		preview.ValidationErrors = []string{}
	}

	for i, entry := range entries {
		match, err := s.matcher.Match(ctx, entry)
		if err != nil {
			return nil, fmt.Errorf("failed to match entry %d: %w", i+1, err)
		}

		item := domain.PreviewItem{
			Line:    i + 1,
			Article: entry.Article,
			Name:    entry.Name,
			Price:   entry.Price,
			Found:   match.Found,
		}

		if match.Found {
			preview.Summary.Found++
			current := match.CurrentPrice
			change := match.Delta
			item.ProductID = match.ProductID
			item.ProductName = match.ProductName
			item.CurrentPrice = &current
			item.PriceChange = &change

			switch {
			case change.IsPositive():
				preview.Summary.PriceIncreased++
			case change.IsNegative():
				preview.Summary.PriceDecreased++
			default:
				preview.Summary.PriceUnchanged++
			}
		} else {
			preview.Summary.NotFound++
		}

		preview.Items = append(preview.Items, item)
	}

	return preview, nil
}

// Apply 按输入顺序逐条应用价格表。每条条目独立：匹配在提交时重新解析
// （目录可能在预览后已变化），落库时在一个事务里先写价格历史（旧价格）再更新
// 商品价格。单条失败不会中断批次，也不回滚之前已成功的条目。
func (s *Service) Apply(ctx context.Context, content string) (*domain.UpdateResult, error) {
	entries := domain.Parse(content)
	if len(entries) == 0 {
		return nil, ErrEmptyPriceList
	}
	if warnings := domain.Validate(entries); len(warnings) > 0 {
		return nil, &ValidationError{Warnings: warnings}
	}

	defer logger.LogDuration(ctx, "Price list applied", "entries", len(entries))()

	result := &domain.UpdateResult{Errors: []domain.UpdateError{}}

	for i, entry := range entries {
		line := i + 1

		match, err := s.matcher.Match(ctx, entry)
		if err != nil {
			s.recordFailure(result, line, entry, err.Error())
			continue
		}
		if !match.Found {
			s.recordFailure(result, line, entry, "product not found")
			continue
		}

		if err := s.writer.ApplyPrice(ctx, match.ProductID, match.CurrentPrice, entry.Price); err != nil {
			s.recordFailure(result, line, entry, err.Error())
			continue
		}

		result.Success++
		s.publish(ctx, match, entry)
	}

	if result.Success > 0 {
		s.invalidate(ctx)
	}

	logger.Info(ctx, "Price list commit finished",
		"success", result.Success,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *Service) recordFailure(result *domain.UpdateResult, line int, entry domain.Entry, reason string) {
	result.Failed++
	result.Errors = append(result.Errors, domain.UpdateError{
		Line:    line,
		Article: entry.Article,
		Name:    entry.Name,
		Reason:  reason,
	})
}

func (s *Service) publish(ctx context.Context, match domain.MatchResult, entry domain.Entry) {
	if s.publisher == nil {
		return
	}
	event := domain.PriceUpdatedEvent{
		ProductID: match.ProductID,
		Article:   entry.Article,
		Name:      match.ProductName,
		OldPrice:  match.CurrentPrice,
		NewPrice:  entry.Price,
	}
	if err := s.publisher.Publish(ctx, s.topic, fmt.Sprintf("%d", match.ProductID), event); err != nil {
		logger.Warn(ctx, "Failed to publish price event", "product_id", match.ProductID, "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, "catalog:*"); err != nil {
		logger.Warn(ctx, "Failed to invalidate catalog cache", "error", err)
	}
}
