package integration_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/typedjson"
	"github.com/hupe1980/typedjson/blobstore"
	"github.com/hupe1980/typedjson/internal/fs"
	"github.com/hupe1980/typedjson/state"
	"github.com/hupe1980/typedjson/testutil"
	"github.com/hupe1980/typedjson/value"
)

// stateDoc wraps a random document in the pipeline state layout.
func stateDoc(t *testing.T, rng *testutil.RNG) value.Value {
	t.Helper()
	resources := value.NewObject(3)
	for i := range 3 {
		resources.Set(fmt.Sprintf("resource_%d", i), rng.Document(2, 3))
	}
	source := value.NewObject(1)
	source.Set("resources", value.Obj(resources))
	sources := value.NewObject(1)
	sources.Set("source", value.Obj(source))
	root := value.NewObject(1)
	root.Set("sources", value.Obj(sources))
	return value.Obj(root)
}

func withoutVersion(v value.Value) value.Value {
	v = v.Clone()
	o, _ := v.AsObject()
	o.Delete(state.VersionKey)
	return v
}

func TestE2E_Restart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	rng := testutil.NewRNG(1)

	// 1. Save with one store
	store := state.NewStore(blobstore.NewLocalStore(dir), state.WithCompression(state.Zlib))

	var saved []value.Value
	for range 4 {
		doc := stateDoc(t, rng)
		_, err := store.Save(ctx, "pipeline", doc)
		require.NoError(t, err)
		saved = append(saved, doc)
	}

	// 2. Reopen and verify every version
	store = state.NewStore(blobstore.NewLocalStore(dir))

	versions, err := store.Versions(ctx, "pipeline")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3, 4}, versions)

	for i, v := range versions {
		got, err := store.LoadVersion(ctx, "pipeline", v)
		require.NoError(t, err)
		assert.True(t, saved[i].Equal(withoutVersion(got)), "version %d", v)
	}
}

func TestE2E_CrashDuringSave(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	rng := testutil.NewRNG(2)

	faulty := fs.NewFaultyFS(fs.Default)
	store := state.NewStore(blobstore.NewLocalStore(dir, blobstore.WithFileSystem(faulty)))

	first := stateDoc(t, rng)
	_, err := store.Save(ctx, "pipeline", first)
	require.NoError(t, err)

	// The second version's write dies half way.
	faulty.AddRule("STATE-000002", fs.Fault{FailAfterBytes: 10})
	_, err = store.Save(ctx, "pipeline", stateDoc(t, rng))
	require.ErrorIs(t, err, fs.ErrInjected)

	// The previous state is still current and nothing partial is listed.
	faulty.ClearRules()
	got, err := store.Load(ctx, "pipeline")
	require.NoError(t, err)
	assert.True(t, first.Equal(withoutVersion(got)))

	versions, err := store.Versions(ctx, "pipeline")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, versions)
}

func TestE2E_StateSurvivesPlainTooling(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	store := state.NewStore(blobs)

	doc := stateDoc(t, testutil.NewRNG(3))
	_, err := store.Save(ctx, "pipeline", doc)
	require.NoError(t, err)

	raw, err := blobs.Get(ctx, "pipeline/STATE-000001.json")
	require.NoError(t, err)

	// A plain reader and writer that knows nothing about tags passes the
	// markers through untouched.
	plain, err := typedjson.Loadb(raw)
	require.NoError(t, err)
	rewritten, err := typedjson.Dumpb(plain)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(raw, rewritten))

	restored, err := typedjson.TypedLoadb(rewritten)
	require.NoError(t, err)
	assert.True(t, doc.Equal(withoutVersion(restored)))
}

func TestE2E_LoadAllMixedBackends(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(4)

	backends := map[string]blobstore.Store{
		"memory":  blobstore.NewMemoryStore(),
		"local":   blobstore.NewLocalStore(t.TempDir()),
		"limited": blobstore.NewLimitedStore(blobstore.NewMemoryStore(), blobstore.Limits{MaxConcurrent: 1, BytesPerSec: 1 << 20}),
	}

	for name, blobs := range backends {
		t.Run(name, func(t *testing.T) {
			store := state.NewStore(blobs, state.WithCompression(state.LZ4), state.WithCache(1<<16))

			want := make(map[string]value.Value)
			var pipelines []string
			for i := range 5 {
				p := fmt.Sprintf("p%d", i)
				pipelines = append(pipelines, p)
				want[p] = stateDoc(t, rng)
				_, err := store.Save(ctx, p, want[p])
				require.NoError(t, err)
			}

			got, err := store.LoadAll(ctx, pipelines...)
			require.NoError(t, err)
			require.Len(t, got, len(want))
			for p, v := range want {
				assert.True(t, v.Equal(withoutVersion(got[p])), p)
			}
		})
	}
}
