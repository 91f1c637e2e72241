package output

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"fsreport/internal/logger"
	"fsreport/pkg/models"
)

// Document kinds written per period.
const (
	KindVatReturn        = "dphdp3"
	KindControlStatement = "dphkh1"
	expenseCacheFileName = "expenses.json"
	directoryPermissions = 0755
	temporaryFilePattern = ".fsreport-*.tmp"
)

// Document is one output file.
type Document struct {
	Path string
	Data []byte
}

// Store lays out and writes report files under a root output directory.
type Store struct {
	fs   afero.Fs
	root string
	log  zerolog.Logger
}

// NewStore creates a store on the OS filesystem.
func NewStore(root string) *Store {
	return NewStoreWithFs(afero.NewOsFs(), root)
}

// NewStoreWithFs creates a store on the given filesystem.
func NewStoreWithFs(fs afero.Fs, root string) *Store {
	return &Store{
		fs:   fs,
		root: root,
		log:  logger.WithComponent("output"),
	}
}

// Fs returns the filesystem the store writes to.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Dir returns <root>/<year>_<month>.
func (s *Store) Dir(period models.Period) string {
	return filepath.Join(s.root, period.Key())
}

// EnsureDir creates the period directory if it does not exist.
func (s *Store) EnsureDir(period models.Period) (string, error) {
	const op = "EnsureDir"

	dir := s.Dir(period)
	if err := s.fs.MkdirAll(dir, directoryPermissions); err != nil {
		return "", fmt.Errorf("%s: failed to create %s: %w", op, dir, err)
	}
	return dir, nil
}

// DocumentPath returns <dir>/<kind>_<year>_<month>m.xml.
func (s *Store) DocumentPath(kind string, period models.Period) string {
	return filepath.Join(s.Dir(period), fmt.Sprintf("%s_%sm.xml", kind, period.Key()))
}

// PaymentCodePath returns <dir>/qr_code_<year>_<month>.svg.
func (s *Store) PaymentCodePath(period models.Period) string {
	return filepath.Join(s.Dir(period), fmt.Sprintf("qr_code_%s.svg", period.Key()))
}

// SummaryPath returns <dir>/summary_<year>_<month>.xlsx.
func (s *Store) SummaryPath(period models.Period) string {
	return filepath.Join(s.Dir(period), fmt.Sprintf("summary_%s.xlsx", period.Key()))
}

// ExpenseCachePath returns <dir>/expenses.json.
func (s *Store) ExpenseCachePath(period models.Period) string {
	return filepath.Join(s.Dir(period), expenseCacheFileName)
}

// WriteDocuments writes every document to a temporary file next to its target
// and renames them into place once all writes succeeded. Temporary files are
// removed on failure. Existing targets are overwritten.
func (s *Store) WriteDocuments(docs ...Document) error {
	const op = "WriteDocuments"

	temps := make([]string, 0, len(docs))
	cleanup := func() {
		for _, t := range temps {
			if err := s.fs.Remove(t); err != nil {
				s.log.Warn().Err(err).Str("path", t).Msg("Failed to remove temporary file")
			}
		}
	}

	for _, doc := range docs {
		tmp, err := s.writeTemp(doc)
		if err != nil {
			cleanup()
			return fmt.Errorf("%s: %s: %w", op, doc.Path, err)
		}
		temps = append(temps, tmp)
	}

	for i, doc := range docs {
		if err := s.fs.Rename(temps[i], doc.Path); err != nil {
			temps = temps[i:]
			cleanup()
			return fmt.Errorf("%s: failed to move %s into place: %w", op, doc.Path, err)
		}
		s.log.Debug().Str("path", doc.Path).Int("bytes", len(doc.Data)).Msg("Wrote file")
	}

	return nil
}

func (s *Store) writeTemp(doc Document) (string, error) {
	f, err := afero.TempFile(s.fs, filepath.Dir(doc.Path), temporaryFilePattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	name := f.Name()

	if _, err := f.Write(doc.Data); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(name)
		return "", fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(name)
		return "", fmt.Errorf("failed to close temporary file: %w", err)
	}
	return name, nil
}
