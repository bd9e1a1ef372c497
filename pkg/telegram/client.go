// Package telegram 提供 Telegram Bot API 的轻量客户端，仅覆盖通知发送所需的方法
package telegram

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/teleshop/storefront/pkg/logger"
)

const apiBaseURL = "https://api.telegram.org"

// Client Telegram Bot API 客户端
type Client struct {
	http  *resty.Client
	token string
}

// NewClient 创建 Bot API 客户端
func NewClient(token string) *Client {
	return &Client{
		http:  resty.New().SetBaseURL(fmt.Sprintf("%s/bot%s", apiBaseURL, token)),
		token: token,
	}
}

// apiResponse Bot API 的通用响应结构
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

// SendMessage 向指定 chat 发送文本消息
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	var result apiResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"chat_id": chatID,
			"text":    text,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/sendMessage")
	if err != nil {
		return fmt.Errorf("failed to call sendMessage: %w", err)
	}

	if !result.OK {
		logger.Error(ctx, "Telegram sendMessage rejected",
			"chat_id", chatID,
			"status", resp.StatusCode(),
			"description", result.Description,
		)
		return fmt.Errorf("telegram API error %d: %s", result.ErrorCode, result.Description)
	}

	logger.Debug(ctx, "Telegram message sent", "chat_id", chatID)
	return nil
}
