//go:generate mockgen -package mocks -destination mocks/interface.go -source=interface.go
package s3

import (
	"context"
	"io"
)

// BasicClient stages files in a bucket under the client's prefix.
type BasicClient interface {
	BufferPutter
	Deleter
}

// BufferPutter can be used to put a file to S3 since File implements Read and Seek.
type BufferPutter interface {
	BufferPut(ctx context.Context, key string, buf io.ReadSeeker) (err error)
}

type Deleter interface {
	Delete(ctx context.Context, key string) error
}
