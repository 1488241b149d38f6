// Package gcs persists the ledger snapshot as an object in Google Cloud
// Storage and writes timestamped backup copies.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/snapshot"
	ledgerstorage "github.com/dvloznov/pocket-ledger/internal/storage"
)

// ErrObjectNotFound is returned by a Bucket when the object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Bucket reads and writes whole objects. It enables mocking of the storage
// client in tests.
type Bucket interface {
	Read(ctx context.Context, object string) ([]byte, error)
	Write(ctx context.Context, object string, data []byte) error
}

// ClientBucket is the Bucket backed by a Cloud Storage client. It assumes
// Application Default Credentials are configured.
type ClientBucket struct {
	client *storage.Client
	name   string
}

// NewClientBucket opens a client for bucket. Close releases it.
func NewClientBucket(ctx context.Context, bucket string) (*ClientBucket, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewClientBucket: create storage client: %w", err)
	}
	return &ClientBucket{client: client, name: bucket}, nil
}

func (b *ClientBucket) Read(ctx context.Context, object string) ([]byte, error) {
	r, err := b.client.Bucket(b.name).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("Read: open object reader %s/%s: %w", b.name, object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Read: reading %s/%s: %w", b.name, object, err)
	}
	return data, nil
}

func (b *ClientBucket) Write(ctx context.Context, object string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := b.client.Bucket(b.name).Object(object).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("Write: copy to object writer %s/%s: %w", b.name, object, err)
	}
	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("Write: finalize upload %s/%s: %w", b.name, object, err)
	}
	return nil
}

func (b *ClientBucket) Close() error {
	return b.client.Close()
}

// Store keeps the snapshot in a single object.
type Store struct {
	bucket Bucket
	object string
	now    func() time.Time
}

// NewStore keeps the snapshot in object within bucket.
func NewStore(bucket Bucket, object string) *Store {
	return &Store{bucket: bucket, object: object, now: time.Now}
}

func (s *Store) Load(ctx context.Context) (*domain.State, error) {
	data, err := s.bucket.Read(ctx, s.object)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, ledgerstorage.ErrNotFound
		}
		return nil, fmt.Errorf("Load: %w", err)
	}

	state, err := snapshot.Import(data)
	if err != nil {
		return nil, fmt.Errorf("Load: parsing %s: %w", s.object, err)
	}
	return state, nil
}

func (s *Store) Save(ctx context.Context, state *domain.State) error {
	data, err := snapshot.Export(*state, s.now())
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	if err := s.bucket.Write(ctx, s.object, data); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

// Backup writes an exported document under prefix with a timestamped name and
// returns the object name.
func Backup(ctx context.Context, bucket Bucket, prefix string, data []byte, now time.Time) (string, error) {
	object := BackupName(prefix, now)
	if err := bucket.Write(ctx, object, data); err != nil {
		return "", fmt.Errorf("Backup: %w", err)
	}
	return object, nil
}

// BackupName returns e.g. "backups/ledger-20240301T120000Z.json".
func BackupName(prefix string, now time.Time) string {
	return path.Join(prefix, "ledger-"+now.UTC().Format("20060102T150405Z")+".json")
}

// ParseURI splits gs://bucket/path/to/object into bucket and object.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

var (
	_ Bucket              = (*ClientBucket)(nil)
	_ ledgerstorage.Store = (*Store)(nil)
)
