package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/grantbook-dev/grantbook/internal/model"
)

// ParseResult is the outcome of parsing one provider export.
type ParseResult struct {
	Rows []model.CsvRow
	// Errors holds header errors and per-row warnings. When the dialect's
	// organization-name header is missing, Rows is empty and Errors explains
	// why; otherwise the file imported with the listed rows skipped.
	Errors []string
	// UnmatchedNames lists charity names (deduplicated, in first-seen order)
	// that had no hit in the EIN lookup index. Only dialects without a tax
	// ID column populate it.
	UnmatchedNames []string
}

// Parser converts a provider CSV export into canonical rows. Dialects that
// carry tax IDs on each row ignore the lookup index.
type Parser interface {
	Parse(r io.Reader, lookup *EinIndex) (*ParseResult, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats returns the registered format names in no particular order.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	return names
}

// DefaultRegistry returns a registry with all built-in dialect parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&MorganStanleyParser{})
	r.Register(&SchwabParser{})
	return r
}

// processedDir is the subdirectory for committed CSVs.
const processedDir = "processed"

// Scan returns CSV files in the import directory.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a committed file from dir to dir/processed/.
func MarkProcessed(dir, fileName string) error {
	src := filepath.Join(dir, fileName)
	dstDir := filepath.Join(dir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
