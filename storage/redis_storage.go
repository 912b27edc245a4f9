package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quantumshield/quantumwallet/config"
	"github.com/quantumshield/quantumwallet/contexthelper"
	"github.com/quantumshield/quantumwallet/internal/types"
)

// RecordTTL bounds how long an encrypted wallet record stays cached. The
// block storage backup is authoritative; redis is a hot cache only.
const RecordTTL = 24 * time.Hour

type RedisStorage struct {
	cfg    *config.Config
	client *redis.Client
}

func NewRedisStorage(cfg *config.Config) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Username: cfg.Redis.User,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	status := client.Ping(context.Background())
	if status.Err() != nil {
		return nil, status.Err()
	}
	return &RedisStorage{
		cfg:    cfg,
		client: client,
	}, nil
}

// SetWalletRecord caches an encrypted wallet record.
func (r *RedisStorage) SetWalletRecord(ctx context.Context, record *types.WalletRecordItem) error {
	if contexthelper.CheckCancellation(ctx) != nil {
		return ctx.Err()
	}
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("fail to serialize wallet record to json, err: %w", err)
	}
	return r.client.Set(ctx, record.Key(), string(recordJSON), RecordTTL).Err()
}

// GetWalletRecord returns a cached wallet record by its record id.
func (r *RedisStorage) GetWalletRecord(ctx context.Context, recordID string) (*types.WalletRecordItem, error) {
	if contexthelper.CheckCancellation(ctx) != nil {
		return nil, ctx.Err()
	}
	recordJSON, err := r.client.Get(ctx, types.WalletRecordKey(recordID)).Result()
	if err != nil {
		return nil, fmt.Errorf("fail to get wallet record, err: %w", err)
	}
	var record types.WalletRecordItem
	if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
		return nil, fmt.Errorf("fail to deserialize wallet record, err: %w", err)
	}
	return &record, nil
}

// DeleteWalletRecord evicts a cached record. Missing keys are not an error.
func (r *RedisStorage) DeleteWalletRecord(ctx context.Context, recordID string) error {
	if contexthelper.CheckCancellation(ctx) != nil {
		return ctx.Err()
	}
	return r.client.Del(ctx, types.WalletRecordKey(recordID)).Err()
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
