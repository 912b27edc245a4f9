package storage

import (
	"context"

	"github.com/quantumshield/quantumwallet/internal/types"
)

// RecordCache is the hot cache for encrypted wallet records. RedisStorage is
// the production implementation.
type RecordCache interface {
	Close() error

	SetWalletRecord(ctx context.Context, record *types.WalletRecordItem) error
	GetWalletRecord(ctx context.Context, recordID string) (*types.WalletRecordItem, error)
	DeleteWalletRecord(ctx context.Context, recordID string) error
}

// BackupStore holds the sealed record backups that outlive the cache.
// BlockStorage is the production implementation.
type BackupStore interface {
	FileExist(fileName string) (bool, error)
	UploadFileWithRetry(fileContent []byte, fileName string, retry int) error
	GetFile(fileName string) ([]byte, error)
	DeleteFile(fileName string) error
}
