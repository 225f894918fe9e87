package bundle

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
)

// SVGMimeType is forced for .svg entries; zip tooling routinely mislabels them.
const SVGMimeType = "image/svg+xml"

const fallbackMimeType = "application/octet-stream"

// MimeType resolves the content type for an archive entry.
// The type declared for the extension wins, then content sniffing, then octet-stream.
func MimeType(name string, data []byte) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == ".svg" {
		return SVGMimeType
	}
	if declared := mime.TypeByExtension(ext); declared != "" {
		return mediaType(declared)
	}
	if len(data) > 0 {
		return mediaType(http.DetectContentType(data))
	}
	return fallbackMimeType
}

// mediaType drops parameters such as "; charset=utf-8" to keep the URI header minimal.
func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(mt)
}

// EncodeDataURI returns the inline representation of data.
func EncodeDataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI reverses EncodeDataURI.
func DecodeDataURI(uri string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URI has no payload separator")
	}
	mimeType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("data URI is not base64 encoded")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URI: %w", err)
	}
	return mimeType, data, nil
}
