package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/teleshop/storefront/pkg/config"
	"github.com/teleshop/storefront/pkg/logger"
	"github.com/teleshop/storefront/pkg/metrics"
	"github.com/teleshop/storefront/pkg/mq"
	"github.com/teleshop/storefront/pkg/telegram"
)

// orderEvent 订单 topic 上两种事件的联合视图：
// new_status 非空表示状态变更，否则为新订单。
type orderEvent struct {
	Number    string  `json:"number"`
	UserID    int64   `json:"user_id"`
	Username  string  `json:"username"`
	Total     string  `json:"total"`
	Comment   string  `json:"comment"`
	OldStatus string  `json:"old_status"`
	NewStatus string  `json:"new_status"`
	Items     []struct {
		Name     string `json:"name"`
		Price    string `json:"price"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
}

// priceEvent 价格 topic 上的联合视图：old_price 存在时才是价格变更事件，
// 商品创建/更新事件没有该字段，跳过即可。
type priceEvent struct {
	ProductID uint             `json:"product_id"`
	Article   string           `json:"article"`
	Name      string           `json:"name"`
	OldPrice  *decimal.Decimal `json:"old_price"`
	NewPrice  *decimal.Decimal `json:"new_price"`
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/notifier/config.toml", "path to config file")
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config failed: %v", err))
	}
	if !cfg.Kafka.Enabled {
		panic("notifier requires kafka.enabled = true")
	}
	if cfg.Telegram.BotToken == "" || cfg.Telegram.AdminChatID == 0 {
		panic("notifier requires telegram.bot_token and telegram.admin_chat_id")
	}

	// 2. Logger
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("init logger failed: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger.Info(ctx, "starting notifier", "environment", cfg.Environment)

	// 3. Telegram client & consumers
	bot := telegram.NewClient(cfg.Telegram.BotToken)
	m := metrics.New(cfg.ServiceName)

	kafkaCfg := mq.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		GroupID:      cfg.Kafka.GroupID,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	}
	orderConsumer, err := mq.NewConsumer(kafkaCfg, cfg.Kafka.OrderTopic)
	if err != nil {
		panic(fmt.Sprintf("create order consumer failed: %v", err))
	}
	defer orderConsumer.Close()
	priceConsumer, err := mq.NewConsumer(kafkaCfg, cfg.Kafka.PriceTopic)
	if err != nil {
		panic(fmt.Sprintf("create price consumer failed: %v", err))
	}
	defer priceConsumer.Close()

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = m.Serve(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	n := &notifier{
		bot:    bot,
		chatID: cfg.Telegram.AdminChatID,
		m:      m,
	}

	// 4. Consume loops
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumeLoop(ctx, orderConsumer, n.handleOrderMessage)
	}()
	go func() {
		defer wg.Done()
		consumeLoop(ctx, priceConsumer, n.handlePriceMessage)
	}()

	// 5. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "shutting down")
	cancel()
	wg.Wait()

	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error(context.Background(), "metrics server shutdown failed", "error", err)
		}
	}
	logger.Info(context.Background(), "notifier stopped")
}

// consumeLoop 读取消息直到 ctx 取消。单条消息处理失败只记日志，不中断消费。
func consumeLoop(ctx context.Context, consumer *mq.KafkaConsumer, handle func(ctx context.Context, msg *mq.Message) error) {
	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			logger.Error(ctx, "Failed to read Kafka message", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if err := handle(ctx, msg); err != nil {
			logger.Error(ctx, "Failed to handle message",
				"topic", msg.Topic,
				"key", msg.Key,
				"error", err,
			)
		}
	}
}

type notifier struct {
	bot    *telegram.Client
	chatID int64
	m      *metrics.Metrics
}

func (n *notifier) handleOrderMessage(ctx context.Context, msg *mq.Message) error {
	var ev orderEvent
	if err := msg.UnmarshalPayload(&ev); err != nil {
		return fmt.Errorf("decode order event: %w", err)
	}

	var text string
	if ev.NewStatus != "" {
		text = fmt.Sprintf("Order %s: %s → %s", ev.Number, ev.OldStatus, ev.NewStatus)
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "New order %s", ev.Number)
		if ev.Username != "" {
			fmt.Fprintf(&b, " from @%s", ev.Username)
		}
		fmt.Fprintf(&b, " (user %d)\n", ev.UserID)
		for _, item := range ev.Items {
			fmt.Fprintf(&b, "• %s × %d — %s\n", item.Name, item.Quantity, item.Price)
		}
		fmt.Fprintf(&b, "Total: %s", ev.Total)
		if ev.Comment != "" {
			fmt.Fprintf(&b, "\nComment: %s", ev.Comment)
		}
		text = b.String()
	}

	return n.send(ctx, text)
}

func (n *notifier) handlePriceMessage(ctx context.Context, msg *mq.Message) error {
	var ev priceEvent
	if err := msg.UnmarshalPayload(&ev); err != nil {
		return fmt.Errorf("decode price event: %w", err)
	}
	// 商品创建/更新事件与价格变更事件共用一个 topic
	if ev.OldPrice == nil || ev.NewPrice == nil {
		return nil
	}

	label := ev.Name
	if ev.Article != "" {
		label = fmt.Sprintf("%s (%s)", ev.Name, ev.Article)
	}
	text := fmt.Sprintf("Price updated: %s %s → %s", label, ev.OldPrice, ev.NewPrice)
	return n.send(ctx, text)
}

func (n *notifier) send(ctx context.Context, text string) error {
	if err := n.bot.SendMessage(ctx, n.chatID, text); err != nil {
		n.m.NotificationsTotal.WithLabelValues("error").Inc()
		return err
	}
	n.m.NotificationsTotal.WithLabelValues("ok").Inc()
	return nil
}
