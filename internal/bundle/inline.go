package bundle

import (
	"regexp"
	"strings"
)

// referencePattern matches a src/href attribute whose value is basename, optionally
// preceded by any leading path. Group 1 is the attribute name as written, group 2 the path.
func referencePattern(basename string) *regexp.Regexp {
	return regexp.MustCompile(`\b((?i:src|href))\s*=\s*["']([^"']*/)?` + regexp.QuoteMeta(basename) + `["']`)
}

// InlineReferences rewrites every src/href reference to an asset basename so it points at
// the asset's data URI. Basenames are matched literally and case-sensitively; values that
// already are data URIs are left alone, so applying it twice changes nothing.
func InlineReferences(document string, assets Assets) string {
	for _, name := range assets.Names() {
		if !strings.Contains(document, name) {
			continue
		}
		uri := assets[name].DataURI
		re := referencePattern(name)
		document = re.ReplaceAllStringFunc(document, func(match string) string {
			sub := re.FindStringSubmatch(match)
			if strings.HasPrefix(strings.ToLower(sub[2]), "data:") {
				return match
			}
			return sub[1] + `="` + uri + `"`
		})
	}
	return document
}

// UnresolvedReferences lists src/href values that still point at a relative file after
// inlining: no scheme, not a fragment, not a data URI.
func UnresolvedReferences(document string) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, m := range anyReference.FindAllStringSubmatch(document, -1) {
		v := strings.TrimSpace(m[1])
		if v == "" || seen[v] || !isRelativeRef(v) {
			continue
		}
		seen[v] = true
		refs = append(refs, v)
	}
	return refs
}

var anyReference = regexp.MustCompile(`\b(?i:src|href)\s*=\s*["']([^"']*)["']`)

var schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

func isRelativeRef(v string) bool {
	if strings.HasPrefix(v, "#") || strings.HasPrefix(v, "//") {
		return false
	}
	return !schemePrefix.MatchString(v)
}
