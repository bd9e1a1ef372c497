package domain

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:TEST-TOKEN"

func signedInitData(t *testing.T, authDate time.Time) string {
	t.Helper()
	values := url.Values{}
	values.Set("user", `{"id":42,"first_name":"Ivan","username":"ivan"}`)
	values.Set("auth_date", fmt.Sprintf("%d", authDate.Unix()))
	values.Set("query_id", "AAH-test")
	values.Set("hash", SignInitData(values, testBotToken))
	return values.Encode()
}

func TestVerifyInitData(t *testing.T) {
	now := time.Now()

	t.Run("valid signature", func(t *testing.T) {
		user, err := VerifyInitData(signedInitData(t, now), testBotToken, time.Hour, now)
		require.NoError(t, err)
		assert.Equal(t, int64(42), user.ID)
		assert.Equal(t, "ivan", user.Username)
	})

	t.Run("tampered payload", func(t *testing.T) {
		values := url.Values{}
		values.Set("user", `{"id":42,"first_name":"Ivan"}`)
		values.Set("auth_date", fmt.Sprintf("%d", now.Unix()))
		values.Set("hash", SignInitData(values, testBotToken))
		values.Set("user", `{"id":999,"first_name":"Mallory"}`)

		_, err := VerifyInitData(values.Encode(), testBotToken, time.Hour, now)
		assert.ErrorIs(t, err, ErrInitDataInvalid)
	})

	t.Run("wrong bot token", func(t *testing.T) {
		_, err := VerifyInitData(signedInitData(t, now), "999999:OTHER-TOKEN", time.Hour, now)
		assert.ErrorIs(t, err, ErrInitDataInvalid)
	})

	t.Run("missing hash", func(t *testing.T) {
		_, err := VerifyInitData("user=%7B%22id%22%3A42%7D&auth_date=1", testBotToken, time.Hour, now)
		assert.ErrorIs(t, err, ErrInitDataInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		stale := now.Add(-2 * time.Hour)
		_, err := VerifyInitData(signedInitData(t, stale), testBotToken, time.Hour, now)
		assert.ErrorIs(t, err, ErrInitDataExpired)
	})

	t.Run("zero ttl skips expiry", func(t *testing.T) {
		stale := now.Add(-48 * time.Hour)
		user, err := VerifyInitData(signedInitData(t, stale), testBotToken, 0, now)
		require.NoError(t, err)
		assert.Equal(t, int64(42), user.ID)
	})

	t.Run("missing user", func(t *testing.T) {
		values := url.Values{}
		values.Set("auth_date", fmt.Sprintf("%d", now.Unix()))
		values.Set("hash", SignInitData(values, testBotToken))

		_, err := VerifyInitData(values.Encode(), testBotToken, time.Hour, now)
		assert.ErrorIs(t, err, ErrInitDataInvalid)
	})
}

func TestParseUnverifiedUser(t *testing.T) {
	values := url.Values{}
	values.Set("user", `{"id":7,"username":"dev"}`)

	user, err := ParseUnverifiedUser(values.Encode())
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)

	_, err = ParseUnverifiedUser("query_id=abc")
	assert.ErrorIs(t, err, ErrInitDataInvalid)
}
