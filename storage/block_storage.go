package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/quantumshield/quantumwallet/config"
)

// BlockStorage keeps encrypted wallet record backups in S3, falling back to a
// local directory when the bucket is unreachable. Records are already
// encrypted twice (wallet passphrase + server secret) before they arrive here.
type BlockStorage struct {
	cfg      *config.Config
	session  *session.Session
	s3Client *s3.S3
	logger   *logrus.Entry
}

func NewBlockStorage(cfg *config.Config) (*BlockStorage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.BlockStorage.Region),
		Endpoint:         aws.String(cfg.BlockStorage.Host),
		Credentials:      credentials.NewStaticCredentials(cfg.BlockStorage.AccessKey, cfg.BlockStorage.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	return &BlockStorage{
		cfg:      cfg,
		session:  sess,
		s3Client: s3.New(sess),
		logger:   logrus.WithField("module", "block_storage"),
	}, nil
}

func (bs *BlockStorage) FileExist(fileName string) (bool, error) {
	_, err := bs.s3Client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(bs.cfg.BlockStorage.Bucket),
		Key:    aws.String(fileName),
	})
	if err != nil {
		bs.logger.Error(err)
		filePathName := filepath.Join(bs.cfg.BlockStorage.RecordsFilePath, fileName)
		_, err := os.Stat(filePathName)
		return false, err
	}
	return true, nil
}

func (bs *BlockStorage) UploadFileWithRetry(fileContent []byte, fileName string, retry int) error {
	var err error
	for i := 0; i < retry; i++ {
		err = bs.UploadFile(fileContent, fileName)
		if err == nil {
			return nil
		}
		bs.logger.Error(err)
	}
	return err
}

func (bs *BlockStorage) UploadFile(fileContent []byte, fileName string) error {
	bs.logger.Infoln("upload record", fileName, "bucket", bs.cfg.BlockStorage.Bucket, "content length", len(fileContent))
	output, err := bs.s3Client.PutObjectWithContext(context.TODO(), &s3.PutObjectInput{
		Bucket:        aws.String(bs.cfg.BlockStorage.Bucket),
		Key:           aws.String(fileName),
		Body:          aws.ReadSeekCloser(bytes.NewReader(fileContent)),
		ContentLength: aws.Int64(int64(len(fileContent))),
	})
	if err != nil {
		bs.logger.Error(err)
		// keep a local copy so an unlock can still succeed while S3 is down
		return bs.writeLocalFile(fileContent, fileName)
	}
	if output != nil {
		bs.logger.Infof("upload record %s success, version id: %s", fileName, aws.StringValue(output.VersionId))
	}
	return nil
}

func (bs *BlockStorage) writeLocalFile(fileContent []byte, fileName string) error {
	if bs.cfg.BlockStorage.RecordsFilePath == "" {
		return os.ErrNotExist
	}
	filePathName := filepath.Join(bs.cfg.BlockStorage.RecordsFilePath, fileName)
	if err := os.MkdirAll(filepath.Dir(filePathName), 0o700); err != nil {
		return err
	}
	return os.WriteFile(filePathName, fileContent, 0o600)
}

func (bs *BlockStorage) GetFile(fileName string) ([]byte, error) {
	output, err := bs.s3Client.GetObjectWithContext(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(bs.cfg.BlockStorage.Bucket),
		Key:    aws.String(fileName),
	})
	if err != nil {
		bs.logger.Error(err)
		filePathName := filepath.Join(bs.cfg.BlockStorage.RecordsFilePath, fileName)
		return os.ReadFile(filePathName)
	}
	defer func() {
		if err := output.Body.Close(); err != nil {
			bs.logger.Error(err)
		}
	}()
	return io.ReadAll(output.Body)
}

func (bs *BlockStorage) DeleteFile(fileName string) error {
	_, err := bs.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(bs.cfg.BlockStorage.Bucket),
		Key:    aws.String(fileName),
	})
	if err != nil {
		bs.logger.Error(err)
		filePathName := filepath.Join(bs.cfg.BlockStorage.RecordsFilePath, fileName)
		return os.Remove(filePathName)
	}
	return nil
}
