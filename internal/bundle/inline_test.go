package bundle

import (
	"strings"
	"testing"
)

func assetsOf(files map[string]string) Assets {
	assets := make(Assets, len(files))
	for name, body := range files {
		mt := MimeType(name, []byte(body))
		assets[name] = Asset{Name: name, MimeType: mt, Size: len(body), DataURI: EncodeDataURI(mt, []byte(body))}
	}
	return assets
}

func TestInlineReferences_Shapes(t *testing.T) {
	assets := assetsOf(map[string]string{"logo.png": "PNGDATA"})
	uri := assets["logo.png"].DataURI

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `<img src="logo.png">`, `<img src="` + uri + `">`},
		{"relative path", `<img src="./img/logo.png">`, `<img src="` + uri + `">`},
		{"parent path", `<img src="../assets/img/logo.png">`, `<img src="` + uri + `">`},
		{"absolute path", `<img src="/static/logo.png">`, `<img src="` + uri + `">`},
		{"single quotes become double", `<img src='logo.png'>`, `<img src="` + uri + `">`},
		{"href", `<link rel="icon" href="logo.png">`, `<link rel="icon" href="` + uri + `">`},
		{"attribute case kept", `<IMG SRC="logo.png">`, `<IMG SRC="` + uri + `">`},
		{"spaces around equals", `<img src = "logo.png">`, `<img src="` + uri + `">`},
		{"basename is case-sensitive", `<img src="Logo.png">`, `<img src="Logo.png">`},
		{"longer basename untouched", `<img src="mylogo.png">`, `<img src="mylogo.png">`},
		{"suffix untouched", `<img src="logo.png.bak">`, `<img src="logo.png.bak">`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InlineReferences(tt.in, assets); got != tt.want {
				t.Errorf("InlineReferences() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestInlineReferences_RegexMetacharacters(t *testing.T) {
	assets := assetsOf(map[string]string{
		"logo(1).png": "one",
		"a+b[2].css":  "two",
		"file.min.js": "three",
	})

	doc := `<img src="img/logo(1).png"><link href="a+b[2].css"><script src="file.min.js"></script>` +
		`<script src="filexminxjs"></script>`
	got := InlineReferences(doc, assets)

	for _, name := range []string{"logo(1).png", "a+b[2].css", "file.min.js"} {
		if !strings.Contains(got, assets[name].DataURI) {
			t.Errorf("reference to %q not inlined: %s", name, got)
		}
	}
	if !strings.Contains(got, `src="filexminxjs"`) {
		t.Error("'.' in a basename must match only a literal dot")
	}
}

func TestInlineReferences_EncodesBytesAndType(t *testing.T) {
	assets := assetsOf(map[string]string{"pixel.gif": "GIF89a-pixel", "icon.svg": "<svg/>"})

	got := InlineReferences(`<img src="pixel.gif"><img src="i/icon.svg">`, assets)

	for _, m := range anyReference.FindAllStringSubmatch(got, -1) {
		mt, data, err := DecodeDataURI(m[1])
		if err != nil {
			t.Fatalf("DecodeDataURI(%q): %v", m[1], err)
		}
		switch mt {
		case "image/gif":
			if string(data) != "GIF89a-pixel" {
				t.Errorf("gif payload = %q", data)
			}
		case SVGMimeType:
			if len(data) != len("<svg/>") {
				t.Errorf("svg payload length = %d, want %d", len(data), len("<svg/>"))
			}
		default:
			t.Errorf("unexpected mime type %q", mt)
		}
	}
}

func TestInlineReferences_Idempotent(t *testing.T) {
	assets := assetsOf(map[string]string{"logo.png": "PNG", "style.css": "body{}", "LICENSE": "MIT"})
	doc := `<link href="css/style.css"><img src="logo.png"><a href="LICENSE">l</a>`

	once := InlineReferences(doc, assets)
	twice := InlineReferences(once, assets)

	if once != twice {
		t.Errorf("second pass changed output:\n%s\n%s", once, twice)
	}
}

func TestInlineReferences_UnreferencedAssetIsFine(t *testing.T) {
	assets := assetsOf(map[string]string{"unused.png": "x"})
	doc := `<p>no references</p>`

	if got := InlineReferences(doc, assets); got != doc {
		t.Errorf("InlineReferences() = %q, want unchanged", got)
	}
}

func TestUnresolvedReferences(t *testing.T) {
	doc := `<img src="data:image/png;base64,AAAA"><img src="missing.png">` +
		`<a href="#top">t</a><a href="https://example.com/x.png">x</a>` +
		`<script src="//cdn.example.com/a.js"></script><img src="missing.png">` +
		`<a href="mailto:a@b.c">m</a><link href="css/extra.css">`

	got := UnresolvedReferences(doc)

	want := []string{"missing.png", "css/extra.css"}
	if len(got) != len(want) {
		t.Fatalf("UnresolvedReferences() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("UnresolvedReferences()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
