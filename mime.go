package sitehooks

import (
	"path/filepath"
	"strings"
)

// MIMEOctetStream is returned for extensions outside the image table.
const MIMEOctetStream = "application/octet-stream"

var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".ico":  "image/x-icon",
	".bmp":  "image/bmp",
}

// MIMEType returns the content type for the file at p based on its
// extension, case-insensitively.
func MIMEType(p string) string {
	if mt, ok := imageMIMETypes[strings.ToLower(filepath.Ext(p))]; ok {
		return mt
	}
	return MIMEOctetStream
}
