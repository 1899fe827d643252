// Package pathutil derives the conventional sidecar file names for a
// corpus given its base path.
package pathutil

import (
	"strings"
)

// Extensions for the four files a Processor opens.
const (
	ExtIndex      = "idx"
	ExtLexicon    = "lex"
	ExtPageTable  = "pages"
	ExtDocLengths = "doclen"
)

// SidecarName joins base and ext into "base.ext".
func SidecarName(base, ext string) string {
	if ext == "" {
		return base
	}
	var b strings.Builder
	b.WriteString(base)
	b.WriteByte('.')
	b.WriteString(ext)
	return b.String()
}

// DefaultPaths returns the four conventional sidecar paths for a corpus
// identified by base (e.g. "/data/corpus" -> "/data/corpus.idx",
// "/data/corpus.lex", "/data/corpus.pages", "/data/corpus.doclen"). The CLI
// front-end uses this so a user only has to name the corpus once.
func DefaultPaths(base string) (indexPath, lexiconPath, pageTablePath, docLengthsPath string) {
	return SidecarName(base, ExtIndex),
		SidecarName(base, ExtLexicon),
		SidecarName(base, ExtPageTable),
		SidecarName(base, ExtDocLengths)
}

// StripExtension strips everything from the first '.' onward, used to
// recover a base corpus name from one of its sidecar paths (e.g. for
// diagnostics/logging).
func StripExtension(filename string) string {
	if idx := strings.Index(filename, "."); idx != -1 {
		return filename[:idx]
	}
	return filename
}
