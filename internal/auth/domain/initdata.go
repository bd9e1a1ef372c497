package domain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInitDataInvalid initData 签名不合法
	ErrInitDataInvalid = errors.New("telegram init data signature is invalid")
	// ErrInitDataExpired initData 已过期
	ErrInitDataExpired = errors.New("telegram init data is expired")
)

// TelegramUser Mini App initData 中携带的用户信息
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// VerifyInitData 按 Telegram WebApp 规范校验 initData 签名并解出用户。
// 校验串为去掉 hash 后按键排序的 key=value 行集合；
// 签名密钥为 HMAC-SHA256(key="WebAppData", data=botToken)。
// ttl 为 auth_date 的最大有效期，now 注入以便测试。
func VerifyInitData(initData, botToken string, ttl time.Duration, now time.Time) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse init data: %w", err)
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, ErrInitDataInvalid
	}
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secret := hmacSHA256([]byte("WebAppData"), []byte(botToken))
	expected := hex.EncodeToString(hmacSHA256(secret, []byte(checkString)))
	if !hmac.Equal([]byte(expected), []byte(gotHash)) {
		return nil, ErrInitDataInvalid
	}

	if ttl > 0 {
		authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
		if err != nil {
			return nil, ErrInitDataInvalid
		}
		if now.Sub(time.Unix(authDate, 0)) > ttl {
			return nil, ErrInitDataExpired
		}
	}

	var user TelegramUser
	if raw := values.Get("user"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil, fmt.Errorf("failed to parse user field: %w", err)
		}
	}
	if user.ID == 0 {
		return nil, ErrInitDataInvalid
	}

	return &user, nil
}

// ParseUnverifiedUser 只解析 user 字段，不校验签名；仅供 dev 模式使用
func ParseUnverifiedUser(initData string) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse init data: %w", err)
	}

	var user TelegramUser
	if raw := values.Get("user"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil, fmt.Errorf("failed to parse user field: %w", err)
		}
	}
	if user.ID == 0 {
		return nil, ErrInitDataInvalid
	}
	return &user, nil
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// SignInitData 用同样的规则对一组字段签名，测试与本地联调使用
func SignInitData(values url.Values, botToken string) string {
	pairs := make([]string, 0, len(values))
	for key := range values {
		if key == "hash" {
			continue
		}
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	secret := hmacSHA256([]byte("WebAppData"), []byte(botToken))
	return hex.EncodeToString(hmacSHA256(secret, []byte(strings.Join(pairs, "\n"))))
}
