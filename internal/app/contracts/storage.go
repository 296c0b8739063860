package contracts

import (
	"context"
)

type Storage interface {
	UploadBase64Object(ctx context.Context, encodedData []byte, contentType, objectName string) (string, error)
}
