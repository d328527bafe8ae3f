package build

import (
	"path/filepath"
	"strings"

	"github.com/conneroisu/lesstask/internal/config"
)

// OutputPath maps sourceFile, found under matchedDir, to its artifact path.
//
// The artifact lands in output resolved against matchedDir, at the same
// relative subdirectory the source has below matchedDir. Only the leaf name
// changes: the extension becomes .css and the result goes through transform.
func OutputPath(sourceFile, matchedDir, output string, transform config.NameFunc) string {
	root := output
	if !filepath.IsAbs(root) {
		root = filepath.Join(matchedDir, root)
	}

	rel, err := filepath.Rel(matchedDir, sourceFile)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(sourceFile)
	}

	inBase := filepath.Base(sourceFile)
	outBase := swapExt(inBase, config.OutputExt)
	if transform != nil {
		outBase = leafName(transform(outBase, inBase), outBase)
	}

	return filepath.Join(root, filepath.Dir(rel), outBase)
}

func swapExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// leafName keeps a transformed name from escaping its directory.
func leafName(name, fallback string) string {
	name = filepath.Base(filepath.FromSlash(name))
	switch name {
	case "", ".", "..", string(filepath.Separator):
		return fallback
	}
	return name
}
