package storage

import (
	"bytes"
	"context"

	"carealert-service/internal/app/contracts"
	"carealert-service/internal/pkg/exceptions"

	"github.com/minio/minio-go/v7"
)

type minioStorage struct {
	client     *minio.Client
	bucketName string
}

func NewMinioStorage(client *minio.Client, bucketName string) contracts.Storage {
	return &minioStorage{
		client:     client,
		bucketName: bucketName,
	}
}

func (s *minioStorage) PutObject(ctx context.Context, objectName string, data []byte, contentType string) error {
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucketName, objectName, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return exceptions.ErrMinioCreateObject(err, s.bucketName)
	}
	return nil
}
