package contracts

import "context"

// ObjectStorage archives raw vendor payloads for audit and replay.
type ObjectStorage interface {
	PutObject(ctx context.Context, objectName string, data []byte, contentType string) error
}
