package bundle

import (
	"regexp"
	"strconv"
)

// source is the input shared by every detector. Tag scanning is done lazily, at most once.
type source struct {
	doc      string
	filename string
	tags     *markup
}

func (s *source) markup() *markup {
	if s.tags == nil {
		s.tags = scanMarkup(s.doc)
	}
	return s.tags
}

// detector yields a width and/or height; zero means "not found".
type detector struct {
	name   string
	detect func(*source) (width, height int)
}

// dimensionDetectors is the cascade, highest priority first.
var dimensionDetectors = []detector{
	{"ad-size-meta", metaDimensions("ad.size")},
	{"viewport-meta", metaDimensions("viewport")},
	{"body-style", bodyStyleDimensions},
	{"html-style", htmlStyleDimensions},
	{"style-block", styleBlockDimensions},
	{"container-style", containerStyleDimensions},
	{"size-comment", patternDimensions(sizeComment)},
	{"format-attribute", patternDimensions(formatAttribute)},
	{"filename", filenameDimensions},
}

const (
	pxValue  = `\s*:\s*(\d+)\s*px`
	propHead = `(?:^|[^-\w])`
)

var (
	metaWidth  = regexp.MustCompile(`(?i)\bwidth\s*=\s*(\d+)`)
	metaHeight = regexp.MustCompile(`(?i)\bheight\s*=\s*(\d+)`)

	widthThenHeight = regexp.MustCompile(`(?is)` + propHead + `width` + pxValue + `.*?` + propHead + `height` + pxValue)
	heightThenWidth = regexp.MustCompile(`(?is)` + propHead + `height` + pxValue + `.*?` + propHead + `width` + pxValue)
	cssWidth        = regexp.MustCompile(`(?is)` + propHead + `width` + pxValue)
	cssHeight       = regexp.MustCompile(`(?is)` + propHead + `height` + pxValue)

	bodyTagStyle      = tagStyle(`body`)
	htmlTagStyle      = tagStyle(`html`)
	containerTagStyle = tagStyle(`(?:div|section|main|article)`)

	styleElement = regexp.MustCompile(`(?is)<style\b[^>]*>(.*?)</style>`)
	bodyRule     = cssRule(`body`)
	htmlRule     = cssRule(`html`)

	sizeComment     = regexp.MustCompile(`(?i)<!--\s*(?:size|dimensions|format)\s*:\s*(\d+)\s*[x×]\s*(\d+)`)
	formatAttribute = regexp.MustCompile(`(?i)\bdata-(?:ad-)?format\s*=\s*["'][^"']*?(\d+)\s*[x×]\s*(\d+)`)
	filenameSize    = regexp.MustCompile(`(?i)(\d+)[x×_-](\d+)`)
)

// tagStyle matches the style attribute of an opening tag; the value is in group 1 or 2.
func tagStyle(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)<` + tag + `\b[^>]*?\sstyle\s*=\s*(?:"([^"]*)"|'([^']*)')`)
}

// cssRule matches a rule whose selector list contains the given element. The closing
// brace is left unconsumed so it can start the next match.
func cssRule(selector string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)(?:^|[\s,}])` + selector + `\s*(?:,[^{]*)?\{([^}]*)`)
}

func metaDimensions(name string) func(*source) (int, int) {
	return func(s *source) (int, int) {
		content, ok := s.markup().meta(name)
		if !ok {
			return 0, 0
		}
		return firstInt(metaWidth, content), firstInt(metaHeight, content)
	}
}

// bodyStyleDimensions accepts either property order on <body>.
func bodyStyleDimensions(s *source) (int, int) {
	style, ok := firstStyle(bodyTagStyle, s.doc)
	if !ok {
		return 0, 0
	}
	if w, h, ok := pair(widthThenHeight, style, false); ok {
		return w, h
	}
	if w, h, ok := pair(heightThenWidth, style, true); ok {
		return w, h
	}
	return 0, 0
}

// htmlStyleDimensions only accepts width before height.
func htmlStyleDimensions(s *source) (int, int) {
	style, ok := firstStyle(htmlTagStyle, s.doc)
	if !ok {
		return 0, 0
	}
	w, h, _ := pair(widthThenHeight, style, false)
	return w, h
}

// styleBlockDimensions uses the first body rule with both sizes. Otherwise the first body
// rule with any size is completed from html rules.
func styleBlockDimensions(s *source) (int, int) {
	var css string
	for _, m := range styleElement.FindAllStringSubmatch(s.doc, -1) {
		css += m[1] + "\n"
	}
	if css == "" {
		return 0, 0
	}

	var w, h int
	for _, m := range bodyRule.FindAllStringSubmatch(css, -1) {
		rw, rh := firstInt(cssWidth, m[1]), firstInt(cssHeight, m[1])
		if rw > 0 && rh > 0 {
			return rw, rh
		}
		if w == 0 && h == 0 {
			w, h = rw, rh
		}
	}
	for _, m := range htmlRule.FindAllStringSubmatch(css, -1) {
		if w > 0 && h > 0 {
			break
		}
		if w == 0 {
			w = firstInt(cssWidth, m[1])
		}
		if h == 0 {
			h = firstInt(cssHeight, m[1])
		}
	}
	return w, h
}

// containerStyleDimensions uses the first container whose inline style has both sizes.
func containerStyleDimensions(s *source) (int, int) {
	for _, m := range containerTagStyle.FindAllStringSubmatch(s.doc, -1) {
		if w, h, ok := pair(widthThenHeight, m[1]+m[2], false); ok {
			return w, h
		}
	}
	return 0, 0
}

func patternDimensions(re *regexp.Regexp) func(*source) (int, int) {
	return func(s *source) (int, int) {
		w, h, _ := pair(re, s.doc, false)
		return w, h
	}
}

func filenameDimensions(s *source) (int, int) {
	w, h, _ := pair(filenameSize, Basename(s.filename), false)
	return w, h
}

func firstStyle(re *regexp.Regexp, doc string) (string, bool) {
	m := re.FindStringSubmatch(doc)
	if m == nil {
		return "", false
	}
	return m[1] + m[2], true
}

// pair extracts two integers from the first match of re. swapped means the pattern
// captures height before width.
func pair(re *regexp.Regexp, text string, swapped bool) (w, h int, ok bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	a, b := positive(m[1]), positive(m[2])
	if swapped {
		a, b = b, a
	}
	return a, b, a > 0 && b > 0
}

func firstInt(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	return positive(m[1])
}

func positive(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
