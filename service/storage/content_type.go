package storage

import (
	"path/filepath"
	"strings"
)

var mimeExtensions = map[string]string{
	"text/html":                     ".html",
	"text/css":                      ".css",
	"text/plain":                    ".txt",
	"text/csv":                      ".csv",
	"text/markdown":                 ".md",
	"text/javascript":               ".js",
	"application/javascript":        ".js",
	"application/json":              ".json",
	"application/xml":               ".xml",
	"application/pdf":               ".pdf",
	"application/zip":               ".zip",
	"application/gzip":              ".gz",
	"application/x-tar":             ".tar",
	"application/x-7z-compressed":   ".7z",
	"application/vnd.rar":           ".rar",
	"application/msword":            ".doc",
	"application/vnd.ms-excel":      ".xls",
	"application/vnd.ms-powerpoint": ".ppt",
	"application/octet-stream":      ".bin",
	"image/png":                     ".png",
	"image/jpeg":                    ".jpg",
	"image/gif":                     ".gif",
	"image/webp":                    ".webp",
	"image/svg+xml":                 ".svg",
	"image/bmp":                     ".bmp",
	"image/x-icon":                  ".ico",
	"image/tiff":                    ".tiff",
	"audio/mpeg":                    ".mp3",
	"audio/ogg":                     ".ogg",
	"audio/wav":                     ".wav",
	"audio/webm":                    ".weba",
	"audio/aac":                     ".aac",
	"audio/flac":                    ".flac",
	"video/mp4":                     ".mp4",
	"video/webm":                    ".webm",
	"video/ogg":                     ".ogv",
	"video/quicktime":               ".mov",
	"video/x-msvideo":               ".avi",
	"video/mpeg":                    ".mpeg",
	"font/ttf":                      ".ttf",
	"font/woff":                     ".woff",
	"font/woff2":                    ".woff2",

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": ".xlsx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
	"application/vnd.oasis.opendocument.text": ".odt",
}

// Extension returns the file extension registered for mimeType, or "".
func Extension(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mimeType, ";"); i != -1 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeExtensions[mimeType]
}

// DeriveExtension prefers the registered extension for mimeType and falls
// back to the extension of filename.
func DeriveExtension(mimeType, filename string) string {
	if ext := Extension(mimeType); ext != "" {
		return ext
	}
	return strings.ToLower(filepath.Ext(filename))
}
