package document

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentic-rfp/rfp-engine/internal/common"
)

// LocalSource reads pre-extracted document text from files under a
// directory. Refs are paths relative to the root so they stay stable
// across hosts.
type LocalSource struct {
	root   string
	exts   map[string]struct{}
	logger *slog.Logger
}

var _ Source = (*LocalSource)(nil)

func NewLocalSource(root string, logger *slog.Logger) *LocalSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalSource{
		root:   root,
		exts:   map[string]struct{}{"txt": {}, "md": {}},
		logger: logger,
	}
}

// List walks the root and returns one document per matching file,
// sorted by relative path for a deterministic acquisition order.
// Hidden files and directories are skipped. A missing root is treated
// as an empty source, not an error.
func (s *LocalSource) List(ctx context.Context) ([]Document, error) {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		s.logger.Warn("document.local.root_missing", "root", s.root)
		return []Document{}, nil
	}

	var docs []Document
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
		if _, ok := s.exts[ext]; !ok {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		text, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read document %s: %w", rel, err)
		}
		docs = append(docs, Document{Ref: rel, Text: string(text)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Ref < docs[j].Ref })
	s.logger.Info("document.local.listed", "root", s.root, "documents", len(docs))
	return docs, nil
}

// Fetch re-reads a single document by its listed reference.
func (s *LocalSource) Fetch(ctx context.Context, ref string) (string, error) {
	clean := filepath.Clean(ref)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: ref %q escapes document root", common.ErrInvalidInput, ref)
	}
	bs, err := os.ReadFile(filepath.Join(s.root, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: document %q", common.ErrMissingDocument, ref)
		}
		return "", fmt.Errorf("read document %s: %w", ref, err)
	}
	return string(bs), nil
}
