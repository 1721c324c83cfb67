package data

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// maxParallelFiles limits concurrent catalog file parsing.
const maxParallelFiles = 8

// spellFile — формат одного YAML файла каталога.
type spellFile struct {
	Spells []*SpellDefinition `yaml:"spells"`
}

// ParseSpells parses one catalog document.
// Spells without id get "<source>/<index>" so that errors point to the file.
func ParseSpells(source string, raw []byte) ([]*SpellDefinition, error) {
	var f spellFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing spells %s: %w", source, err)
	}
	for i, def := range f.Spells {
		if def == nil {
			return nil, fmt.Errorf("parsing spells %s: empty entry #%d", source, i)
		}
		if def.ID == "" {
			def.ID = fmt.Sprintf("%s/%d", source, i)
		}
		if def.Name == "" {
			def.Name = def.ID
		}
	}
	return f.Spells, nil
}

// LoadCatalogDir загружает все *.yaml / *.yml файлы каталога параллельно.
// Порядок файлов не влияет на результат.
func LoadCatalogDir(ctx context.Context, dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading catalog dir %s: %w", dir, err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)

	results := make([][]*SpellDefinition, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading spell file %s: %w", path, err)
			}
			source := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			defs, err := ParseSpells(source, raw)
			if err != nil {
				return err
			}
			results[i] = defs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*SpellDefinition
	for _, defs := range results {
		all = append(all, defs...)
	}

	catalog, err := NewCatalog(all)
	if err != nil {
		return nil, fmt.Errorf("building catalog from %s: %w", dir, err)
	}

	slog.Info("loaded spell catalog",
		"dir", dir,
		"files", len(paths),
		"spells", catalog.Len(),
		"digest", catalog.Digest())
	return catalog, nil
}
