package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"labreport-service/internal/app/contracts"
	"labreport-service/internal/pkg/exceptions"

	"github.com/minio/minio-go/v7"
)

type minioStorage struct {
	MinioClient *minio.Client
	BucketName  string
	UseSSL      bool
}

func NewMinioStorage(minioClient *minio.Client, bucketName string, useSSL bool) contracts.Storage {
	return &minioStorage{
		MinioClient: minioClient,
		BucketName:  bucketName,
		UseSSL:      useSSL,
	}
}

// UploadBase64Object decodes the inline payload, stores it under objectName
// and returns the object's URL.
func (m *minioStorage) UploadBase64Object(ctx context.Context, encodedData []byte, contentType, objectName string) (string, error) {
	decodedData, err := base64.StdEncoding.DecodeString(string(encodedData))
	if err != nil {
		return "", exceptions.ErrStorageUploadObject(err)
	}

	_, err = m.MinioClient.PutObject(
		ctx,
		m.BucketName,
		objectName,
		bytes.NewReader(decodedData),
		int64(len(decodedData)),
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return "", exceptions.ErrStorageUploadObject(err)
	}

	scheme := "http"
	if m.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, m.MinioClient.EndpointURL().Host, m.BucketName, objectName), nil
}
