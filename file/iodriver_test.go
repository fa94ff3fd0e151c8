package file_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepteams/vortex/file"
	"github.com/deepteams/vortex/layout"
)

func TestIODriverFetch(t *testing.T) {
	data := []byte("hello world, this is segment data")
	driver := file.NewIODriver(bytes.NewReader(data), file.IODriverOptions{Concurrency: 2})

	entries := []file.SegmentMapEntry{
		{Offset: 0, Length: 5},
		{Offset: 6, Length: 5},
	}
	locate := func(id layout.SegmentID) (file.SegmentMapEntry, bool) {
		if int(id) >= len(entries) {
			return file.SegmentMapEntry{}, false
		}
		return entries[id], true
	}

	got, err := driver.Fetch(context.Background(), []layout.SegmentID{0, 1}, locate)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got[0]))
	assert.Equal(t, "world", string(got[1]))
}

func TestIODriverFetchUnknownSegment(t *testing.T) {
	driver := file.NewIODriver(bytes.NewReader(nil), file.IODriverOptions{})
	_, err := driver.Fetch(context.Background(), []layout.SegmentID{9}, func(layout.SegmentID) (file.SegmentMapEntry, bool) {
		return file.SegmentMapEntry{}, false
	})
	assert.Error(t, err)
}

func TestSegmentCacheServesFromInitialThenFetcher(t *testing.T) {
	entries := []file.SegmentMapEntry{{Offset: 0, Length: 3}}
	locate := func(id layout.SegmentID) (file.SegmentMapEntry, bool) {
		if int(id) >= len(entries) {
			return file.SegmentMapEntry{}, false
		}
		return entries[id], true
	}
	driver := file.NewIODriver(bytes.NewReader([]byte("abc")), file.IODriverOptions{})

	cache, err := file.NewSegmentCache(driver, locate, map[layout.SegmentID][]byte{1: []byte("cached")}, file.SegmentCacheOptions{})
	require.NoError(t, err)
	defer cache.Close()

	out, err := cache.Request(context.Background(), []layout.SegmentID{1, 0})
	require.NoError(t, err)
	assert.Equal(t, "cached", string(out[1]))
	assert.Equal(t, "abc", string(out[0]))

	// Second request for segment 0 should be served from the ristretto
	// cache rather than re-fetched. A re-fetch would read the same bytes
	// from the bytes.Reader, so this checks the value, not which tier
	// served it.
	out2, err := cache.Request(context.Background(), []layout.SegmentID{0})
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out2[0]))
}
