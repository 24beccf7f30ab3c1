package files

import (
	"mime"
	"path/filepath"
)

// ContentType maps a record's declared name to a MIME type by extension,
// falling back to a generic binary type.
func ContentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
