package service

import (
	"path"
	"strings"

	"shareapi/internal/model"
)

// Per-scope upload limits.
const (
	MaxResourceSize int64 = 100 << 20
	MaxImageSize    int64 = 5 << 20
)

// NormalizeScope maps the accepted scope spellings onto the stored scope name.
func NormalizeScope(scope string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(scope)) {
	case "resource", model.ScopeResources:
		return model.ScopeResources, nil
	case "image", model.ScopeImages:
		return model.ScopeImages, nil
	default:
		return "", ErrInvalidScope
	}
}

// ScopeLimit returns the largest object size accepted in scope.
func ScopeLimit(scope string) int64 {
	if scope == model.ScopeImages {
		return MaxImageSize
	}
	return MaxResourceSize
}

// KeyInScope reports whether key addresses an object under scope. Leading
// slashes are ignored and a key prefix before the scope segment is allowed.
func KeyInScope(key, scope string) bool {
	k := strings.TrimLeft(key, "/")
	return strings.HasPrefix(k, scope+"/") || strings.Contains(k, "/"+scope+"/") || k == scope
}

// allowedExtensions lists the object extensions accepted per scope.
var allowedExtensions = map[string]map[string]bool{
	model.ScopeImages: {"jpg": true, "jpeg": true, "png": true},
	model.ScopeResources: {
		"md": true, "markdown": true, "ppt": true, "pptx": true, "doc": true, "docx": true,
		"pdf": true, "txt": true, "jpeg": true, "jpg": true, "png": true, "zip": true,
	},
}

var contentTypes = map[string]string{
	"md":       "text/markdown",
	"markdown": "text/markdown",
	"ppt":      "application/vnd.ms-powerpoint",
	"pptx":     "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"doc":      "application/msword",
	"docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"pdf":      "application/pdf",
	"txt":      "text/plain",
	"jpeg":     "image/jpeg",
	"jpg":      "image/jpeg",
	"png":      "image/png",
	"zip":      "application/zip",
}

// ExtensionAllowed reports whether objects with ext may be stored in scope.
func ExtensionAllowed(scope, ext string) bool {
	return allowedExtensions[scope][strings.ToLower(ext)]
}

// ContentTypeFor returns the content type recorded for ext. Stored content
// types always come from this table, never from the client.
func ContentTypeFor(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return "application/octet-stream"
}

var extensionsByType = map[string]map[string]string{
	model.ScopeImages: {
		"image/jpeg": "jpg",
		"image/jpg":  "jpg",
		"image/png":  "png",
	},
	model.ScopeResources: {
		"application/pdf": "pdf",
		"text/markdown":   "md",
		"text/plain":      "txt",
		"application/zip": "zip",
	},
}

// PickExtension chooses the object key extension: the file name's own
// extension lower-cased, else one implied by contentType, else png for images
// and bin for resources.
func PickExtension(scope, fileName, contentType string) string {
	if ext := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(path.Ext(fileName), "."))); ext != "" {
		return ext
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ext, ok := extensionsByType[scope][ct]; ok {
		return ext
	}
	if scope == model.ScopeImages {
		return "png"
	}
	return "bin"
}
