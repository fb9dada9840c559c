package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// MaxThumbnailBytes caps a decoded thumbnail upload.
const MaxThumbnailBytes = 5 << 20

const thumbnailPrefix = "thumbnails/"

// ErrUnsupportedImage is returned for data URLs that are not an accepted
// raster image type.
var ErrUnsupportedImage = errors.New("unsupported thumbnail image type")

// ErrImageTooLarge is returned when a decoded thumbnail exceeds MaxThumbnailBytes.
var ErrImageTooLarge = errors.New("thumbnail image too large")

// ErrMalformedDataURL is returned for a "data:" string that cannot be decoded.
var ErrMalformedDataURL = errors.New("malformed data URL")

var thumbnailExt = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ParseDataURL decodes an RFC 2397 data URL. ok is false when s is not a
// data URL at all, in which case err is nil.
func ParseDataURL(s string) (contentType string, data []byte, ok bool, err error) {
	rest, found := strings.CutPrefix(s, "data:")
	if !found {
		return "", nil, false, nil
	}

	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", nil, true, ErrMalformedDataURL
	}

	params := strings.Split(meta, ";")
	contentType = strings.ToLower(strings.TrimSpace(params[0]))
	if contentType == "" {
		contentType = "text/plain"
	}

	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, true, fmt.Errorf("%w: %v", ErrMalformedDataURL, err)
		}
		return contentType, data, true, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, true, fmt.Errorf("%w: %v", ErrMalformedDataURL, err)
	}
	return contentType, []byte(unescaped), true, nil
}

// OffloadThumbnail uploads an inline data-URL thumbnail and returns its
// public URL. Anything that is not a data URL is returned unchanged, as is
// everything when storage is not configured (nil client).
func (c *Client) OffloadThumbnail(ctx context.Context, thumb string) (string, error) {
	if c == nil {
		return thumb, nil
	}

	contentType, data, ok, err := ParseDataURL(thumb)
	if !ok {
		return thumb, nil
	}
	if err != nil {
		return "", err
	}

	ext, allowed := thumbnailExt[contentType]
	if !allowed {
		return "", ErrUnsupportedImage
	}
	if len(data) > MaxThumbnailBytes {
		return "", ErrImageTooLarge
	}

	key := thumbnailPrefix + uuid.NewString() + "." + ext
	if err := c.Upload(ctx, key, contentType, data); err != nil {
		return "", err
	}

	slog.Info("thumbnail offloaded", "key", key, "bytes", len(data))
	return c.FileURL(key), nil
}

// ReleaseThumbnail deletes a thumbnail previously created by
// OffloadThumbnail. URLs this storage does not own are ignored, and
// failures are logged rather than returned.
func (c *Client) ReleaseThumbnail(ctx context.Context, thumbURL string) {
	if c == nil || thumbURL == "" {
		return
	}
	key, ok := c.ExtractKey(thumbURL)
	if !ok || !strings.HasPrefix(key, thumbnailPrefix) {
		return
	}
	if err := c.Delete(ctx, key); err != nil {
		slog.Warn("thumbnail delete failed", "key", key, "error", err)
	}
}
