// Package storage keeps rendered verification artifacts (QR images,
// signature blocks, stamped PDFs) in S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ObjectStore is the subset of object storage the services need.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// StorageKey builds "documents/<id>/<parts...>".
func StorageKey(documentID int64, parts ...string) string {
	elems := append([]string{"documents", strconv.FormatInt(documentID, 10)}, parts...)
	return strings.Join(elems, "/")
}

// RandomStorageKey returns a collision-free key under the document prefix,
// keeping ext (e.g. ".pdf").
func RandomStorageKey(documentID int64, folder, ext string) string {
	return StorageKey(documentID, folder, fmt.Sprintf("%s%s", uuid.New(), ext))
}
