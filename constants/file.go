package constants

import "strings"

// MaxUploadBytes caps receipt image uploads at 15MB.
const MaxUploadBytes = 15 << 20

// AllowedExtensions holds the accepted receipt image extensions.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// AllowedContentTypes holds the accepted upload MIME types.
var AllowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedImage reports whether ext names an accepted receipt image format.
func IsAllowedImage(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// IsAllowedContentType reports whether a declared upload MIME type is an
// accepted image type. Parameters after a semicolon are ignored.
func IsAllowedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	_, ok := AllowedContentTypes[ct]
	return ok
}
