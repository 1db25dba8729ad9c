package core

import (
	"regexp"
	"strings"
)

// fileExtensions is the fixed set of extensions the inference heuristics
// recognize, shared by every pattern below.
const fileExtensions = `html|js|css|txt|md|json|xml|py|java|cpp|c|h|go|rs|php|rb|sh|bat|sql|yaml|yml`

// Compiled once at package init and shared read-only across sessions.
var (
	// intentVerbPattern matches an intent verb ("create", "new", "write", ...)
	// or an explicit "file name:" label followed by a bare filename.
	intentVerbPattern = regexp.MustCompile(`(?i)(?:create|new|generate|write|save|file\s*name\s*:\s*)\s*([a-zA-Z0-9_\-]+\.(?:` + fileExtensions + `))`)

	// bareFilenamePattern matches a bare filename, optionally followed by the
	// word "file".
	bareFilenamePattern = regexp.MustCompile(`(?i)([a-zA-Z0-9_\-]+\.(?:` + fileExtensions + `))(?:\s*file)?`)

	// namedPattern matches "named"/"called" followed by a filename.
	namedPattern = regexp.MustCompile(`(?i)(?:named|called)\s+([a-zA-Z0-9_\-]+\.(?:` + fileExtensions + `))`)

	// genericFilenamePattern is the general fallback: any token that looks
	// like name.ext with a short extension.
	genericFilenamePattern = regexp.MustCompile(`\b([a-zA-Z0-9_\-]+\.[a-zA-Z0-9]+)\b`)
)

// keywordFilenames maps a case-insensitive substring found in the user
// message to a default filename, used only when no extension-bearing
// filename could be found at all.
var keywordFilenames = []struct {
	pattern  *regexp.Regexp
	filename string
}{
	{regexp.MustCompile(`(?i)login\s*page`), "login.html"},
	{regexp.MustCompile(`(?i)(?:signup|register)\s*page`), "register.html"},
	{regexp.MustCompile(`(?i)(?:home|index)\s*page`), "index.html"},
	{regexp.MustCompile(`(?i)about\s*page`), "about.html"},
	{regexp.MustCompile(`(?i)contact\s*page`), "contact.html"},
}

// interruptMarkers are stripped from the user message before inference runs,
// since they are host-injected bookkeeping text, not user intent.
var interruptMarkers = []string{
	"[Request interrupted by user]",
	"[CANCELLED]",
	"[STOPPED]",
}

// inferFilename attempts to recover an intended output filename from the
// last user message, in the priority order of §4.5: an intent-verb match
// beats a bare filename match beats a "named X" match beats the generic
// short-extension fallback beats a keyword-to-default mapping. Ordering
// matters: "create test.html for my login page" must yield "test.html", not
// "login.html".
func inferFilename(userMessage string) string {
	if userMessage == "" {
		return ""
	}

	cleaned := userMessage
	for _, marker := range interruptMarkers {
		cleaned = strings.ReplaceAll(cleaned, marker, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	for _, pattern := range []*regexp.Regexp{intentVerbPattern, bareFilenamePattern, namedPattern} {
		if match := pattern.FindStringSubmatch(cleaned); match != nil {
			return match[1]
		}
	}

	if matches := genericFilenamePattern.FindAllStringSubmatch(cleaned, -1); matches != nil {
		for _, match := range matches {
			name := match[1]
			dot := strings.LastIndexByte(name, '.')
			if dot < 0 {
				continue
			}
			ext := name[dot+1:]
			if len(ext) <= 4 {
				return name
			}
		}
	}

	for _, mapping := range keywordFilenames {
		if mapping.pattern.MatchString(cleaned) {
			return mapping.filename
		}
	}

	return ""
}
