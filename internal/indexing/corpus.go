package indexing

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyCorpus is returned when a docs tree yields no extractable pages
var ErrEmptyCorpus = errors.New("no documentation files found")

// FindDocumentFiles recursively lists markdown and MDX files under dir.
// Directories that cannot be read are skipped instead of failing the walk.
func FindDocumentFiles(dir string) []string {
	var files []string

	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && IsDocumentFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})

	return files
}

// LoadCorpus extracts every page under docsDir.
// Pages that fail to extract are logged and dropped; the order of the
// result follows the directory walk.
func LoadCorpus(ctx context.Context, docsDir string, opts ExtractOptions) ([]DocumentRecord, error) {
	files := FindDocumentFiles(docsDir)

	records := make([]DocumentRecord, len(files))
	ok := make([]bool, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			relativePath, err := filepath.Rel(docsDir, file)
			if err != nil {
				log.Printf("Warning: skipping %s: %v", file, err)
				return nil
			}

			record, err := ExtractFile(file, filepath.ToSlash(relativePath), opts)
			if err != nil {
				log.Printf("Warning: skipping %s: %v", relativePath, err)
				return nil
			}

			records[i] = record
			ok[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	extracted := make([]DocumentRecord, 0, len(records))
	for i, record := range records {
		if ok[i] {
			extracted = append(extracted, record)
		}
	}

	if len(extracted) == 0 {
		return nil, ErrEmptyCorpus
	}

	return extracted, nil
}
