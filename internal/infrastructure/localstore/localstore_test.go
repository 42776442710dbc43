package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gearshop/internal/domain/cart"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "guest-cart.json"))
}

func TestFileStore_Load_MissingFile(t *testing.T) {
	s := newTestFileStore(t)

	lines, err := s.Load()

	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestFileStore_SaveThenLoad(t *testing.T) {
	s := newTestFileStore(t)

	saved := []cart.Line{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-2", Quantity: 1},
	}
	require.NoError(t, s.Save(saved))

	loaded, err := s.Load()

	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestFileStore_SaveOverwritesWholesale(t *testing.T) {
	s := newTestFileStore(t)

	require.NoError(t, s.Save([]cart.Line{{ProductID: "prod-1", Quantity: 2}}))
	require.NoError(t, s.Save([]cart.Line{{ProductID: "prod-2", Quantity: 5}}))

	loaded, err := s.Load()

	require.NoError(t, err)
	assert.Equal(t, []cart.Line{{ProductID: "prod-2", Quantity: 5}}, loaded)
}

func TestFileStore_Clear(t *testing.T) {
	s := newTestFileStore(t)

	require.NoError(t, s.Save([]cart.Line{{ProductID: "prod-1", Quantity: 1}}))
	require.NoError(t, s.Clear())

	lines, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestFileStore_Clear_MissingFileIsNoop(t *testing.T) {
	s := newTestFileStore(t)

	assert.NoError(t, s.Clear())
}

func TestFileStore_Load_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guest-cart.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewFileStore(path)

	_, err := s.Load()
	assert.Error(t, err)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, s.Save([]cart.Line{{ProductID: "prod-1", Quantity: 2}}))

	lines, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []cart.Line{{ProductID: "prod-1", Quantity: 2}}, lines)

	require.NoError(t, s.Clear())
	lines, err = s.Load()
	require.NoError(t, err)
	assert.Nil(t, lines)
}
