package dupescan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// groupFixture writes duplicate files to disk and returns a group whose
// keeper is keep and whose Delete members are the rest.
func groupFixture(t *testing.T, dir string, size int, keep string, dels ...string) DuplicateGroup {
	t.Helper()
	data := make([]byte, size)

	mk := func(name string) FileRecord {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0644))
		return FileRecord{Path: path, Size: int64(size)}
	}

	group := DuplicateGroup{
		Digest: "test-" + keep,
		Size:   int64(size),
		Keep:   mk(keep),
		Reason: ReasonNewestFile,
	}
	for _, name := range dels {
		group.Delete = append(group.Delete, mk(name))
	}
	group.BytesReclaimable = int64(size) * int64(len(group.Delete))
	return group
}

func TestExecutor_DeletesOnlyTheDeleteMembers(t *testing.T) {
	dir := t.TempDir()
	group := groupFixture(t, dir, 1024, "keep.bin", "dup1.bin", "dup2.bin")

	report := NewExecutor(2).Apply(context.Background(), []DuplicateGroup{group}, false)

	assert.False(t, report.Preview)
	assert.Equal(t, 2, report.FilesDeleted)
	assert.Equal(t, int64(2048), report.BytesReclaimed)
	assert.Equal(t, 0, report.FilesFailed)

	_, err := os.Stat(group.Keep.Path)
	assert.NoError(t, err, "keeper must survive")
	for _, rec := range group.Delete {
		_, err := os.Stat(rec.Path)
		assert.True(t, os.IsNotExist(err), "%s should be gone", rec.Path)
	}
}

func TestExecutor_MissingFileFailsAloneSiblingsSucceed(t *testing.T) {
	dir := t.TempDir()
	group := groupFixture(t, dir, 512, "keep.bin", "gone.bin", "present.bin")

	// A file already removed between detection and deletion.
	require.NoError(t, os.Remove(group.Delete[0].Path))

	report := NewExecutor(2).Apply(context.Background(), []DuplicateGroup{group}, false)

	assert.Equal(t, 1, report.FilesDeleted)
	assert.Equal(t, int64(512), report.BytesReclaimed)
	assert.Equal(t, 1, report.FilesFailed)

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, group.Delete[0].Path, failures[0].Path)
	assert.Equal(t, KindIO, failures[0].Kind)

	_, err := os.Stat(group.Delete[1].Path)
	assert.True(t, os.IsNotExist(err), "sibling deletion must not be blocked")
}

func TestExecutor_PreviewTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	group := groupFixture(t, dir, 4096, "keep.bin", "dup1.bin", "dup2.bin")

	preview := NewExecutor(2).Apply(context.Background(), []DuplicateGroup{group}, true)

	assert.True(t, preview.Preview)
	assert.Equal(t, 2, preview.FilesDeleted)
	assert.Equal(t, int64(8192), preview.BytesReclaimed)
	assert.Equal(t, 0, preview.FilesFailed)

	// Every file still on disk.
	for _, rec := range append(group.Delete, group.Keep) {
		_, err := os.Stat(rec.Path)
		assert.NoError(t, err, "preview must not touch %s", rec.Path)
	}

	// Execute now reports exactly what the preview promised.
	execute := NewExecutor(2).Apply(context.Background(), []DuplicateGroup{group}, false)
	assert.Equal(t, preview.FilesDeleted, execute.FilesDeleted)
	assert.Equal(t, preview.BytesReclaimed, execute.BytesReclaimed)
	require.Equal(t, len(preview.Outcomes), len(execute.Outcomes))
	for i := range preview.Outcomes {
		assert.Equal(t, preview.Outcomes[i].Path, execute.Outcomes[i].Path)
		assert.Equal(t, preview.Outcomes[i].Bytes, execute.Outcomes[i].Bytes)
	}
}

func TestExecutor_OutcomeOrderFollowsGroups(t *testing.T) {
	dir := t.TempDir()
	g1 := groupFixture(t, dir, 256, "a-keep.bin", "a1.bin", "a2.bin")
	g2 := groupFixture(t, dir, 256, "b-keep.bin", "b1.bin")

	report := NewExecutor(4).Apply(context.Background(), []DuplicateGroup{g1, g2}, false)

	want := []string{
		g1.Delete[0].Path,
		g1.Delete[1].Path,
		g2.Delete[0].Path,
	}
	require.Len(t, report.Outcomes, len(want))
	for i, path := range want {
		assert.Equal(t, path, report.Outcomes[i].Path)
	}
}

func TestExecutor_CancelledContextSkipsWithoutError(t *testing.T) {
	dir := t.TempDir()
	group := groupFixture(t, dir, 128, "keep.bin", "dup.bin")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := NewExecutor(1).Apply(ctx, []DuplicateGroup{group}, false)

	assert.Equal(t, 0, report.FilesDeleted)
	assert.Equal(t, 0, report.FilesFailed)
	require.Len(t, report.Outcomes, 1)
	assert.False(t, report.Outcomes[0].Deleted)
	assert.Nil(t, report.Outcomes[0].Err)

	_, err := os.Stat(group.Delete[0].Path)
	assert.NoError(t, err, "skipped file must still exist")
}

func TestExecutor_EmptyGroups(t *testing.T) {
	report := NewExecutor(0).Apply(context.Background(), nil, false)
	assert.Equal(t, 0, report.FilesDeleted)
	assert.Empty(t, report.Outcomes)
}
