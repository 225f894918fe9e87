package bundle

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// dims accumulates the first width and height found across the cascade.
type dims struct {
	width, height int
	sources       []string
}

func (d *dims) complete() bool {
	return d.width > 0 && d.height > 0
}

// fill sets whichever fields are still unset. It reports whether it set anything.
func (d *dims) fill(w, h int) bool {
	changed := false
	if d.width == 0 && w > 0 {
		d.width = w
		changed = true
	}
	if d.height == 0 && h > 0 {
		d.height = h
		changed = true
	}
	return changed
}

// Inference is the full result of Infer, including which detectors contributed.
type Inference struct {
	Metadata
	Sources []string `json:"sources"`
}

// Infer derives display dimensions and a display name from the raw document text and the
// filename it came from. It never fails: missing signals fall back to 800×600.
func Infer(document, filename string) Metadata {
	return InferDetailed(document, filename).Metadata
}

// InferDetailed is Infer plus the names of the detectors that supplied the dimensions.
func InferDetailed(document, filename string) Inference {
	src := &source{doc: document, filename: filename}

	d := detectDimensions(src)
	name := finishName(inferName(src), d.width, d.height)

	return Inference{
		Metadata: Metadata{Width: d.width, Height: d.height, Name: name},
		Sources:  d.sources,
	}
}

// detectDimensions folds the cascade until both fields are set. A tier may complete a
// pair started by a higher tier; once complete, lower tiers never run.
func detectDimensions(src *source) dims {
	var d dims
	for _, det := range dimensionDetectors {
		if d.complete() {
			break
		}
		if d.fill(det.detect(src)) {
			d.sources = append(d.sources, det.name)
		}
	}
	if d.fill(DefaultWidth, DefaultHeight) {
		d.sources = append(d.sources, "default")
	}
	return d
}

// ArchiveHint picks the filename that drives inference for an archive: the archive's own
// name, unless only the document entry's name carries a size or a device keyword.
func ArchiveHint(archiveName, documentName string) string {
	if hasFilenameSignal(archiveName) || !hasFilenameSignal(documentName) {
		return archiveName
	}
	return Basename(documentName)
}

func hasFilenameSignal(name string) bool {
	base := Basename(name)
	if _, _, ok := pair(filenameSize, base, false); ok {
		return true
	}
	lower := strings.ToLower(base)
	for _, kn := range keywordNames {
		if containsAll(lower, kn.keywords) {
			return true
		}
	}
	return false
}

var sizeInName = regexp.MustCompile(`(?i)\d+\s*[x×]\s*\d+`)

// inferName tries the title, then the format-name/display-name meta tag, then the filename.
func inferName(src *source) string {
	tags := src.markup()
	if title := strings.TrimSpace(tags.title); title != "" {
		return title
	}
	if name, ok := tags.meta("format-name", "display-name"); ok {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	return nameFromFilename(src.filename)
}

type keywordName struct {
	keywords []string
	name     string
}

var keywordNames = []keywordName{
	{[]string{"mobile", "portrait"}, "Mobile Portrait"},
	{[]string{"mobile", "landscape"}, "Mobile Landscape"},
	{[]string{"tablet", "portrait"}, "Tablet Portrait"},
	{[]string{"tablet", "landscape"}, "Tablet Landscape"},
	{[]string{"desktop"}, "Desktop"},
}

var nameExts = map[string]bool{DocumentExt: true, ".htm": true, ArchiveExt: true}

// nameFromFilename strips the extension, turns separators into spaces and maps known
// device/orientation keywords to a canonical name.
func nameFromFilename(filename string) string {
	base := Basename(filename)
	if base == "." || base == "/" {
		return ""
	}
	if ext := path.Ext(base); nameExts[strings.ToLower(ext)] {
		base = strings.TrimSuffix(base, ext)
	}
	cleaned := strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(base))

	lower := strings.ToLower(cleaned)
	for _, kn := range keywordNames {
		if containsAll(lower, kn.keywords) {
			return kn.name
		}
	}
	return cleaned
}

func containsAll(s string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}

// finishName appends " (W×H)" unless the name already carries a size.
func finishName(name string, width, height int) string {
	size := fmt.Sprintf("%d×%d", width, height)
	if name == "" {
		return size
	}
	if sizeInName.MatchString(name) {
		return name
	}
	return name + " (" + size + ")"
}
