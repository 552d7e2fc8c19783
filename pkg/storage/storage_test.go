package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocalDisk(t.TempDir(), "http://localhost:8080/storage/")
	require.NoError(t, err)

	key := "product-images/shirts/1700000000-abcd1234.jpg"
	require.NoError(t, d.Put(ctx, key, strings.NewReader("jpeg-bytes"), PutOptions{ContentType: "image/jpeg"}))

	ok, err := d.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := d.Get(ctx, key)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "jpeg-bytes", string(body))

	assert.Equal(t, "http://localhost:8080/storage/"+key, d.URL(key))

	require.NoError(t, d.Delete(ctx, key))
	require.NoError(t, d.Delete(ctx, key), "deleting twice is fine")

	_, err = d.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	d, err := NewLocalDisk(root, "http://x")
	require.NoError(t, err)

	full, err := d.abs("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(full, d.Root()))

	_, err = d.abs("/")
	assert.Error(t, err)
}

func TestKeyFromURL(t *testing.T) {
	cases := []struct {
		url, key string
		ok       bool
	}{
		{"https://cdn.example.com/product-images/shirts/a.jpg", "product-images/shirts/a.jpg", true},
		{"http://localhost:8080/storage/product-images/a.webp?v=2", "product-images/a.webp", true},
		{"https://cdn.example.com/other/a.jpg", "", false},
		{"https://cdn.example.com/product-images/", "", false},
	}
	for _, c := range cases {
		key, ok := KeyFromURL(c.url, "product-images")
		assert.Equal(t, c.ok, ok, c.url)
		assert.Equal(t, c.key, key, c.url)
	}
}

func TestManager(t *testing.T) {
	m := NewManager("local")
	_, err := m.Disk("local")
	assert.Error(t, err)

	d, err := NewLocalDisk(t.TempDir(), "http://x")
	require.NoError(t, err)
	m.Register("local", d)

	assert.Same(t, d, m.Default())
	l, ok := m.Local()
	assert.True(t, ok)
	assert.Same(t, d, l)
	assert.Equal(t, []string{"local"}, m.Names())
}
