package bundle

import (
	"strings"

	"golang.org/x/net/html"
)

type metaTag struct {
	name    string
	content string
}

// markup holds the tag-level facts the detectors need: the first <title> and every
// <meta name=... content=...> in document order.
type markup struct {
	title string
	metas []metaTag
}

// scanMarkup tokenizes doc once. The tokenizer lowercases tag and attribute names and
// decodes entities, so lookups are case-insensitive and attribute order does not matter.
func scanMarkup(doc string) *markup {
	m := &markup{}
	z := html.NewTokenizer(strings.NewReader(doc))

	inTitle, titleDone := false, false
	var title strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			m.title = title.String()
			return m
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "title":
				inTitle = !titleDone
			case "meta":
				if hasAttr {
					if tag, ok := readMeta(z); ok {
						m.metas = append(m.metas, tag)
					}
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "title" && inTitle {
				inTitle, titleDone = false, true
			}
		case html.TextToken:
			if inTitle {
				title.Write(z.Text())
			}
		}
	}
}

func readMeta(z *html.Tokenizer) (metaTag, bool) {
	var tag metaTag
	hasName := false
	for {
		key, val, more := z.TagAttr()
		switch string(key) {
		case "name":
			tag.name = strings.TrimSpace(string(val))
			hasName = true
		case "content":
			tag.content = string(val)
		}
		if !more {
			break
		}
	}
	return tag, hasName
}

// meta returns the content of the first meta tag whose name matches any of names.
func (m *markup) meta(names ...string) (string, bool) {
	for _, tag := range m.metas {
		for _, n := range names {
			if strings.EqualFold(tag.name, n) {
				return tag.content, true
			}
		}
	}
	return "", false
}
