// Package storage keeps uploaded recipe images on local disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
)

// ImageStore saves image blobs and releases them by the URL it handed out.
type ImageStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, imgPath string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectName builds "<RFC3339 UTC time>-<original name>" with the original
// name reduced to characters that are safe in a path and a URL.
func objectName(now time.Time, original string) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	base = unsafeChars.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-.")
	if base == "" {
		base = "image"
	}
	stamp := strings.ReplaceAll(now.UTC().Format("20060102T150405.000000000Z"), ".", "")
	return stamp + "-" + base
}

// keyFromPath returns the object name an image URL points at, or "" when
// the URL does not live under prefix.
func keyFromPath(imgPath, prefix string) string {
	if !strings.HasPrefix(imgPath, prefix) {
		return ""
	}
	key := strings.TrimPrefix(imgPath, prefix)
	if key == "" || strings.Contains(key, "/") || key == "." || key == ".." {
		return ""
	}
	return key
}
