package cache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ZaguanLabs/sitelai"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_Get_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	c := NewRedisCacheFromClient(db, RedisConfig{TTL: time.Hour, KeyPrefix: "test:"})
	mock.ExpectGet("test:mykey").SetVal("myvalue")

	val, ok := c.Get("mykey")
	assert.True(t, ok)
	assert.Equal(t, "myvalue", val)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, Stats{Hits: 1}, c.Stats())
}

func TestRedisCache_Get_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	var logs bytes.Buffer
	c := NewRedisCacheFromClient(db, RedisConfig{
		KeyPrefix: "test:",
		Logger:    slog.New(slog.NewTextHandler(&logs, nil)),
	})
	mock.ExpectGet("test:mykey").RedisNil()

	val, ok := c.Get("mykey")
	assert.False(t, ok)
	assert.Empty(t, val)
	assert.Empty(t, logs.String(), "a plain miss is not logged")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_Get_ErrorIsMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	var logs bytes.Buffer
	c := NewRedisCacheFromClient(db, RedisConfig{Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	mock.ExpectGet(DefaultKeyPrefix + "mykey").SetErr(errors.New("connection refused"))

	_, ok := c.Get("mykey")
	assert.False(t, ok)
	assert.Contains(t, logs.String(), "redis cache lookup failed")
	assert.Equal(t, Stats{Misses: 1}, c.Stats())
}

func TestRedisCache_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	c := NewRedisCacheFromClient(db, RedisConfig{TTL: time.Hour, KeyPrefix: "test:"})
	mock.ExpectSet("test:mykey", "myvalue", time.Hour).SetVal("OK")

	assert.NoError(t, c.Set("mykey", "myvalue"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_Set_NoTTL(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	c := NewRedisCacheFromClient(db, RedisConfig{KeyPrefix: "test:"})
	mock.ExpectSet("test:mykey", "myvalue", 0).SetVal("OK")

	assert.NoError(t, c.Set("mykey", "myvalue"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_Set_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	c := NewRedisCacheFromClient(db, RedisConfig{})
	mock.ExpectSet(DefaultKeyPrefix+"mykey", "myvalue", 0).SetErr(errors.New("READONLY"))

	err := c.Set("mykey", "myvalue")
	var ce *sitelai.CacheError
	require.ErrorAs(t, err, &ce)
}

func TestRedisCache_DefaultPrefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	c := NewRedisCacheFromClient(db, RedisConfig{})
	key := sitelai.CacheKeyExtended(sitelai.HashText("Hello"), "en", "es", sitelai.FormatText)
	mock.ExpectGet("sitelai:" + key).SetVal("Hola")

	val, ok := c.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "Hola", val)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_Ping(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	c := NewRedisCacheFromClient(db, RedisConfig{})
	mock.ExpectPing().SetVal("PONG")

	assert.NoError(t, c.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisConfig{URL: "not a url"})
	var ce *sitelai.CacheError
	assert.ErrorAs(t, err, &ce)
}
