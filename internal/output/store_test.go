package output

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fsreport/pkg/models"
)

var june = models.Period{Year: 2023, Month: 6}

func TestStore_Paths(t *testing.T) {
	s := NewStoreWithFs(afero.NewMemMapFs(), "/reports")

	assert.Equal(t, "/reports/2023_6", s.Dir(june))
	assert.Equal(t, "/reports/2023_6/dphdp3_2023_6m.xml", s.DocumentPath(KindVatReturn, june))
	assert.Equal(t, "/reports/2023_6/dphkh1_2023_6m.xml", s.DocumentPath(KindControlStatement, june))
	assert.Equal(t, "/reports/2023_6/qr_code_2023_6.svg", s.PaymentCodePath(june))
	assert.Equal(t, "/reports/2023_6/summary_2023_6.xlsx", s.SummaryPath(june))
	assert.Equal(t, "/reports/2023_6/expenses.json", s.ExpenseCachePath(june))

	assert.Equal(t, "/reports/2024_12/dphdp3_2024_12m.xml", s.DocumentPath(KindVatReturn, models.Period{Year: 2024, Month: 12}))
}

func TestStore_EnsureDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStoreWithFs(fs, "/reports")

	dir, err := s.EnsureDir(june)
	require.NoError(t, err)
	assert.Equal(t, "/reports/2023_6", dir)

	ok, err := afero.DirExists(fs, dir)
	require.NoError(t, err)
	assert.True(t, ok)

	// existing directory is fine
	_, err = s.EnsureDir(june)
	assert.NoError(t, err)
}

func TestStore_WriteDocuments(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStoreWithFs(fs, "/reports")
	dir, err := s.EnsureDir(june)
	require.NoError(t, err)

	vatReturn := s.DocumentPath(KindVatReturn, june)
	controlStatement := s.DocumentPath(KindControlStatement, june)

	require.NoError(t, s.WriteDocuments(
		Document{Path: vatReturn, Data: []byte("<first/>")},
		Document{Path: controlStatement, Data: []byte("<kh/>")},
	))

	got, err := afero.ReadFile(fs, vatReturn)
	require.NoError(t, err)
	assert.Equal(t, "<first/>", string(got))

	// overwritten on rerun
	require.NoError(t, s.WriteDocuments(Document{Path: vatReturn, Data: []byte("<second/>")}))
	got, err = afero.ReadFile(fs, vatReturn)
	require.NoError(t, err)
	assert.Equal(t, "<second/>", string(got))

	assertNoTemporaryFiles(t, fs, dir)
}

func TestStore_WriteDocuments_FailureLeavesNoFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStoreWithFs(fs, "/reports")
	dir, err := s.EnsureDir(june)
	require.NoError(t, err)

	readOnly := afero.NewReadOnlyFs(fs)
	ro := NewStoreWithFs(readOnly, "/reports")

	err = ro.WriteDocuments(Document{Path: ro.DocumentPath(KindVatReturn, june), Data: []byte("<x/>")})
	require.Error(t, err)

	exists, err := afero.Exists(fs, s.DocumentPath(KindVatReturn, june))
	require.NoError(t, err)
	assert.False(t, exists)
	assertNoTemporaryFiles(t, fs, dir)
}

func TestStore_WriteDocuments_OS(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	_, err := s.EnsureDir(june)
	require.NoError(t, err)

	path := s.PaymentCodePath(june)
	require.NoError(t, s.WriteDocuments(Document{Path: path, Data: []byte("<svg/>")}))

	got, err := os.ReadFile(filepath.Join(root, "2023_6", "qr_code_2023_6.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(got))
}

func TestStore_WriteDocuments_MissingDirectory(t *testing.T) {
	s := NewStore(t.TempDir())

	err := s.WriteDocuments(Document{Path: s.DocumentPath(KindVatReturn, june), Data: []byte("<x/>")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func assertNoTemporaryFiles(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()
	entries, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".fsreport-"), e.Name())
	}
}
