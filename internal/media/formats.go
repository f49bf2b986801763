package media

import (
	"path/filepath"
	"strings"
)

var supportedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".svg":  true,
}

// posterSizes are the widths the image CDN serves.
var posterSizes = map[string]bool{
	"w92":      true,
	"w154":     true,
	"w185":     true,
	"w342":     true,
	"w500":     true,
	"w780":     true,
	"w1280":    true,
	"h632":     true,
	"original": true,
}

func IsSupportedImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return supportedImageExtensions[ext]
}

func IsPosterSize(size string) bool {
	return posterSizes[size]
}

func GetContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
