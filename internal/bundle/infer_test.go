package bundle

import (
	"reflect"
	"testing"
)

func TestInfer_Dimensions(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		filename string
		wantW    int
		wantH    int
	}{
		{
			name:  "viewport only",
			doc:   `<head><meta name="viewport" content="width=320, height=480"></head>`,
			wantW: 320, wantH: 480,
		},
		{
			name: "ad.size beats viewport",
			doc: `<meta name="viewport" content="width=320,height=480">` +
				`<meta name="ad.size" content="width=300,height=250">`,
			wantW: 300, wantH: 250,
		},
		{
			name:  "meta attributes in any order and case",
			doc:   `<META CONTENT="width=728,height=90" NAME="Ad.Size">`,
			wantW: 728, wantH: 90,
		},
		{
			name:  "viewport beats body style",
			doc:   `<meta name="viewport" content="width=320,height=50"><body style="width:300px;height:250px">`,
			wantW: 320, wantH: 50,
		},
		{
			name:  "body style width first",
			doc:   `<body style="margin:0; width: 300px; height: 250px">`,
			wantW: 300, wantH: 250,
		},
		{
			name:  "body style height first",
			doc:   `<body style="height: 90px; width: 728px">`,
			wantW: 728, wantH: 90,
		},
		{
			name:  "body style ignores prefixed properties",
			doc:   `<body style="max-width: 1000px; width: 300px; line-height: 12px; height: 250px">`,
			wantW: 300, wantH: 250,
		},
		{
			name:  "html style width first",
			doc:   `<html style="width:970px;height:250px"><body></body></html>`,
			wantW: 970, wantH: 250,
		},
		{
			name:  "html style height first is not recognised",
			doc:   `<html style="height: 90px; width: 728px"><body></body></html>`,
			wantW: DefaultWidth, wantH: DefaultHeight,
		},
		{
			name:  "style block body rule",
			doc:   "<style>\n* { box-sizing: border-box; }\nbody { width: 160px; height: 600px; }\n</style>",
			wantW: 160, wantH: 600,
		},
		{
			name:  "style block html rule fills body gaps",
			doc:   `<style>body { width: 300px; } html { height: 600px; }</style>`,
			wantW: 300, wantH: 600,
		},
		{
			name:  "style block selector list",
			doc:   `<style>html, body { width: 320px; height: 100px; margin: 0 }</style>`,
			wantW: 320, wantH: 100,
		},
		{
			name:  "style block reset rule before sizing rule",
			doc:   "<style>html, body { margin: 0; padding: 0; }\nbody { width: 300px; height: 250px; }</style>",
			wantW: 300, wantH: 250,
		},
		{
			name:  "style block adjacent body rules",
			doc:   `<style>body{margin:0}body{width:300px;height:250px}</style>`,
			wantW: 300, wantH: 250,
		},
		{
			name:  "style block sizing in second style element",
			doc:   `<style>body { margin: 0 }</style><style>body { width: 728px; height: 90px }</style>`,
			wantW: 728, wantH: 90,
		},
		{
			name:  "style block partial body completed from later html rule",
			doc:   `<style>body { width: 300px } html { margin: 0 } html { height: 250px }</style>`,
			wantW: 300, wantH: 250,
		},
		{
			name:  "body style ignores hyphenated style attributes",
			doc:   `<body data-style="width:10px;height:20px" style="width:300px;height:250px">`,
			wantW: 300, wantH: 250,
		},
		{
			name:  "container ignores ng-style",
			doc:   `<div ng-style="width:10px;height:20px"></div><section style="width:970px;height:90px"></section>`,
			wantW: 970, wantH: 90,
		},
		{
			name:  "container inline style",
			doc:   `<div class="wrap"><div id="ad" style="width:160px;height:600px"></div></div>`,
			wantW: 160, wantH: 600,
		},
		{
			name:  "size comment",
			doc:   `<!-- size: 970x250 --><p>hi</p>`,
			wantW: 970, wantH: 250,
		},
		{
			name:  "format attribute",
			doc:   `<div data-format="leaderboard 728x90"></div>`,
			wantW: 728, wantH: 90,
		},
		{
			name:     "filename",
			doc:      `<p>no hints</p>`,
			filename: "banner_320x480.html",
			wantW:    320, wantH: 480,
		},
		{
			name:     "device-width viewport falls through",
			doc:      `<meta name="viewport" content="width=device-width, initial-scale=1">`,
			filename: "creative-300x250.zip",
			wantW:    300, wantH: 250,
		},
		{
			name:  "no signal",
			doc:   `<p>nothing</p>`,
			wantW: DefaultWidth, wantH: DefaultHeight,
		},
		{
			name:  "partial meta completed by lower tier",
			doc:   `<meta name="ad.size" content="width=300"><meta name="viewport" content="width=320,height=480">`,
			wantW: 300, wantH: 480,
		},
		{
			name:  "partial meta completed by default",
			doc:   `<meta name="ad.size" content="height=90">`,
			wantW: DefaultWidth, wantH: 90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Infer(tt.doc, tt.filename)
			if got.Width != tt.wantW || got.Height != tt.wantH {
				t.Errorf("Infer() = %dx%d, want %dx%d", got.Width, got.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestInfer_Names(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		filename string
		want     string
	}{
		{
			name: "title with size appended",
			doc:  `<title>Spring Sale</title><meta name="ad.size" content="width=300,height=250">`,
			want: "Spring Sale (300×250)",
		},
		{
			name: "title entities decoded",
			doc:  `<title> Spring &amp; Summer </title>`,
			want: "Spring & Summer (800×600)",
		},
		{
			name: "title already carries a size",
			doc:  `<title>Leaderboard 728 x 90</title>`,
			want: "Leaderboard 728 x 90",
		},
		{
			name: "format-name meta",
			doc:  `<meta name="format-name" content="Half Page"><body style="width:300px;height:600px">`,
			want: "Half Page (300×600)",
		},
		{
			name: "display-name meta",
			doc:  `<meta name="display-name" content="Skyscraper">`,
			want: "Skyscraper (800×600)",
		},
		{
			name:     "empty title falls through to filename",
			doc:      `<title>   </title>`,
			filename: "summer_promo.html",
			want:     "summer promo (800×600)",
		},
		{
			name:     "mobile portrait keywords",
			filename: "mobile-portrait-ad.html",
			want:     "Mobile Portrait (800×600)",
		},
		{
			name:     "mobile landscape keywords",
			filename: "Mobile_Landscape_v2.zip",
			want:     "Mobile Landscape (800×600)",
		},
		{
			name:     "tablet landscape keywords",
			filename: "tablet-landscape.zip",
			want:     "Tablet Landscape (800×600)",
		},
		{
			name:     "desktop keyword",
			filename: "uploads/desktop_hero.html",
			want:     "Desktop (800×600)",
		},
		{
			name:     "filename with size",
			filename: "banner_320x480.html",
			want:     "banner 320x480",
		},
		{
			name: "nothing at all",
			want: "800×600",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Infer(tt.doc, tt.filename).Name; got != tt.want {
				t.Errorf("Infer().Name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArchiveHint(t *testing.T) {
	tests := []struct {
		archive, document, want string
	}{
		{"banner_300x250.zip", "index.html", "banner_300x250.zip"},
		{"campaign.zip", "creative/mobile-portrait_320x480.html", "mobile-portrait_320x480.html"},
		{"campaign.zip", "desktop.html", "desktop.html"},
		{"campaign.zip", "index.html", "campaign.zip"},
		{"tablet-landscape.zip", "sky_160x600.html", "tablet-landscape.zip"},
	}
	for _, tt := range tests {
		if got := ArchiveHint(tt.archive, tt.document); got != tt.want {
			t.Errorf("ArchiveHint(%q, %q) = %q, want %q", tt.archive, tt.document, got, tt.want)
		}
	}
}

func TestInferDetailed_Sources(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{"default only", `<p></p>`, []string{"default"}},
		{"single tier", `<!-- size: 300x250 -->`, []string{"size-comment"}},
		{
			"two tiers",
			`<meta name="ad.size" content="width=300"><div data-format="320x50"></div>`,
			[]string{"ad-size-meta", "format-attribute"},
		},
		{"partial then default", `<meta name="viewport" content="height=50">`, []string{"viewport-meta", "default"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferDetailed(tt.doc, "")
			if !reflect.DeepEqual(got.Sources, tt.want) {
				t.Errorf("Sources = %v, want %v", got.Sources, tt.want)
			}
		})
	}
}

func TestInfer_AlwaysPositive(t *testing.T) {
	docs := []string{
		"",
		`<meta name="ad.size" content="width=0,height=0">`,
		`<body style="width: 0px; height: 0px">`,
		`<<<>>> not html at all`,
	}
	for _, doc := range docs {
		got := Infer(doc, "")
		if got.Width <= 0 || got.Height <= 0 {
			t.Errorf("Infer(%q) = %dx%d, want positive", doc, got.Width, got.Height)
		}
		if got.Name == "" {
			t.Errorf("Infer(%q).Name is empty", doc)
		}
	}
}
