// Package storage holds uploaded image bytes.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// ImageStore persists image objects and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
}

// UploadResult describes a stored object.
type UploadResult struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ContentTypeForImage maps an image file extension to its MIME type, or
// application/octet-stream when the extension is not an accepted image type.
func ContentTypeForImage(extension string) string {
	if ct, ok := imageTypes[strings.ToLower(extension)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ExtensionForContentType is the inverse of ContentTypeForImage.
func ExtensionForContentType(contentType string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg":
		return ".jpg", true
	case "image/png":
		return ".png", true
	case "image/gif":
		return ".gif", true
	case "image/webp":
		return ".webp", true
	}
	return "", false
}

// ResolveImageType picks the MIME type of an upload from its declared content type,
// falling back to the filename extension. ok is false for anything but an accepted image.
func ResolveImageType(filename, declared string) (contentType, extension string, ok bool) {
	if ext, found := ExtensionForContentType(declared); found {
		return strings.ToLower(strings.TrimSpace(declared)), ext, true
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ct := ContentTypeForImage(ext); ct != "application/octet-stream" {
		if ext == ".jpeg" {
			ext = ".jpg"
		}
		return ct, ext, true
	}
	return "", "", false
}
