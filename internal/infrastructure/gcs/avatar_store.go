package gcs

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/pkg/helpers"
)

var ErrUnsupportedImage = errors.New("unsupported avatar content type")

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// AvatarStore uploads profile pictures to a bucket.
type AvatarStore struct {
	client *storage.Client
	bucket string
}

func NewAvatarStore(client *storage.Client, bucket string) *AvatarStore {
	return &AvatarStore{client: client, bucket: bucket}
}

// Upload stores r under avatars/<user id>/ and returns its public URL.
func (s *AvatarStore) Upload(ctx context.Context, userID vo.UserID, contentType string, r io.Reader) (string, error) {
	objectPath, err := AvatarObjectPath(userID, contentType)
	if err != nil {
		return "", err
	}
	return UploadObject(ctx, s.client, s.bucket, objectPath, contentType, r)
}

// AvatarObjectPath names a new avatar object for the user.
func AvatarObjectPath(userID vo.UserID, contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := imageExt[ct]
	if !ok {
		return "", ErrUnsupportedImage
	}
	return path.Join("avatars", userID.String(), uuid.NewString()+ext), nil
}

// UploadObject uploads bytes from r into bucket/objectPath with the provided contentType
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath, contentType string, r io.Reader) (string, error) {
	wc := client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return helpers.PublicURL(bucket, objectPath), nil
}
