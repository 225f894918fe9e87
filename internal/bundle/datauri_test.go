package bundle

import (
	"strings"
	"testing"
)

func TestMimeType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{"png by extension", "logo.png", png, "image/png"},
		{"extension wins over content", "logo.png", []byte("GIF89a"), "image/png"},
		{"css without charset", "style.css", []byte("body{}"), "text/css"},
		{"uppercase extension", "PHOTO.JPG", nil, "image/jpeg"},
		{"svg", "icon.svg", []byte("<svg/>"), SVGMimeType},
		{"svg uppercase", "ICON.SVG", nil, SVGMimeType},
		{"sniffed when extension unknown", "blob.zzqx", png, "image/png"},
		{"no extension, no data", "LICENSE", nil, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MimeType(tt.file, tt.data); got != tt.want {
				t.Errorf("MimeType(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestDataURI_RoundTrip(t *testing.T) {
	data := []byte{0x00, 0xff, 0x10, 'a', 'b'}
	uri := EncodeDataURI("image/png", data)

	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("EncodeDataURI() = %q", uri)
	}

	mt, got, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("DecodeDataURI() error = %v", err)
	}
	if mt != "image/png" {
		t.Errorf("mime = %q, want image/png", mt)
	}
	if string(got) != string(data) {
		t.Errorf("data = %v, want %v", got, data)
	}
}

func TestDecodeDataURI_Invalid(t *testing.T) {
	for _, uri := range []string{
		"logo.png",
		"data:image/png;base64",
		"data:text/plain,hello",
		"data:image/png;base64,!!!",
	} {
		if _, _, err := DecodeDataURI(uri); err == nil {
			t.Errorf("DecodeDataURI(%q) expected error", uri)
		}
	}
}
