package filestore

import (
	"bytes"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

func newTestStore(t *testing.T, max int64) *LocalStore {
	dir, err := ioutil.TempDir("", "siscon-media")
	require.NoError(t, err)
	return NewLocalStore(core.StorageConfig{MediaDir: dir, MaxUploadSize: max})
}

func TestLocalStore_SavePDF(t *testing.T) {
	store := newTestStore(t, 1<<10)
	pdf := "%PDF-1.4\n" + strings.Repeat("x", 100)

	rel, err := store.SavePDF(strings.NewReader(pdf))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "expedientes/"))
	assert.True(t, strings.HasSuffix(rel, ".pdf"))

	f, err := store.Open(rel)
	require.NoError(t, err)
	content, err := ioutil.ReadAll(f)
	_ = f.Close()
	require.NoError(t, err)
	assert.Equal(t, pdf, string(content))

	require.NoError(t, store.Delete(rel))
	_, err = store.Open(rel)
	assert.Error(t, err)
	assert.NoError(t, store.Delete(rel))
}

func TestLocalStore_SavePDF_Rejects(t *testing.T) {
	store := newTestStore(t, 64)

	_, err := store.SavePDF(strings.NewReader("hello, not a pdf"))
	assert.Equal(t, ErrNotPDF, err)

	_, err = store.SavePDF(bytes.NewReader(nil))
	assert.Equal(t, ErrNotPDF, err)

	_, err = store.SavePDF(strings.NewReader("%PDF-1.4\n" + strings.Repeat("x", 100)))
	assert.Equal(t, ErrTooLarge, err)
}

func TestLocalStore_Open_RejectsTraversal(t *testing.T) {
	store := newTestStore(t, 64)
	_, err := store.Open("../../etc/passwd")
	assert.Error(t, err)
}
