package build

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/conneroisu/lesstask/internal/config"
	taskerrors "github.com/conneroisu/lesstask/internal/errors"
)

// Expand returns the absolute paths of the directories matching pattern, in
// lexical order. A pattern that matches nothing yields an empty list.
func Expand(ctx context.Context, fsys afero.Fs, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, taskerrors.NewDiscoveryError(taskerrors.CodeGlobExpand, pattern, err)
	}

	base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
	rest = strings.TrimSuffix(rest, "/")

	if rest != "" && !doublestar.ValidatePattern(rest) {
		return nil, taskerrors.NewDiscoveryError(taskerrors.CodeGlobPattern, pattern, doublestar.ErrBadPattern)
	}

	root, err := filepath.Abs(filepath.FromSlash(base))
	if err != nil {
		return nil, taskerrors.NewDiscoveryError(taskerrors.CodeGlobExpand, pattern, err)
	}

	var matches []string
	err = afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			// unreadable subtrees are skipped, the root must be readable
			if path != root && errors.Is(err, fs.ErrPermission) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !info.IsDir() {
			return nil
		}

		if rest == "" {
			if path == root {
				matches = append(matches, path)
			}
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if rel == "." {
			if matchesEmpty(rest) {
				matches = append(matches, path)
			}
			return nil
		}
		if ok, _ := doublestar.Match(rest, filepath.ToSlash(rel)); ok {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, taskerrors.NewDiscoveryError(taskerrors.CodeGlobExpand, pattern, err)
	}

	return matches, nil
}

// matchesEmpty reports whether pattern matches zero path segments, which
// holds only when every segment is "**".
func matchesEmpty(pattern string) bool {
	for _, segment := range strings.Split(pattern, "/") {
		if segment != "**" {
			return false
		}
	}
	return true
}

// Discover expands cfg.Input and creates one DirectoryCompiler per matched
// directory.
func Discover(ctx context.Context, env Env, cfg config.Config, debug bool) ([]*DirectoryCompiler, error) {
	env = env.withDefaults()

	dirs, err := Expand(ctx, env.Fs, cfg.Input)
	if err != nil {
		return nil, err
	}

	pipeline := NewPipeline(env, cfg, debug)
	compilers := make([]*DirectoryCompiler, 0, len(dirs))
	for _, dir := range dirs {
		compilers = append(compilers, NewDirectoryCompiler(dir, env, pipeline, cfg.Concurrency))
	}

	return compilers, nil
}
