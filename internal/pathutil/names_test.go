package pathutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vasth/bm25engine/internal/pathutil"
)

func TestDefaultPaths(t *testing.T) {
	idx, lex, pages, doclen := pathutil.DefaultPaths("/data/corpus")
	assert.Equal(t, "/data/corpus.idx", idx)
	assert.Equal(t, "/data/corpus.lex", lex)
	assert.Equal(t, "/data/corpus.pages", pages)
	assert.Equal(t, "/data/corpus.doclen", doclen)
}

func TestSidecarNameNoExtension(t *testing.T) {
	assert.Equal(t, "corpus", pathutil.SidecarName("corpus", ""))
}

func TestStripExtension(t *testing.T) {
	assert.Equal(t, "/data/corpus", pathutil.StripExtension("/data/corpus.idx"))
	assert.Equal(t, "noext", pathutil.StripExtension("noext"))
}
