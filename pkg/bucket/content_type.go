package bucket

import (
	"mime"
	"path"
	"strings"
)

const defaultContentType = "application/octet-stream"

func contentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".tar"):
		return "application/x-tar"
	case strings.HasSuffix(key, ".zst"):
		return "application/zstd"
	}

	if mt := mime.TypeByExtension(path.Ext(key)); mt != "" {
		return mt
	}
	return defaultContentType
}
