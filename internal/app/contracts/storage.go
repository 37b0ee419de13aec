package contracts

import "context"

// Storage is the object store used for audit archive exports.
type Storage interface {
	PutObject(ctx context.Context, objectName string, data []byte, contentType string) error
}
