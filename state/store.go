package state

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/typedjson"
	"github.com/hupe1980/typedjson/blobstore"
	"github.com/hupe1980/typedjson/internal/cache"
	"github.com/hupe1980/typedjson/value"
)

const (
	// VersionKey is the top-level state key holding the saved version.
	VersionKey = "_state_version"

	currentName   = "CURRENT"
	versionPrefix = "STATE-"
	versionSuffix = ".json"
)

var (
	// ErrNoState is returned when a pipeline has no saved state.
	ErrNoState = errors.New("no state saved")

	// ErrConcurrentModification is returned when another writer saved the
	// same version first.
	ErrConcurrentModification = errors.New("state modified concurrently")
)

type storeOptions struct {
	compression Compression
	retain      int
	concurrency int
	limits      *blobstore.Limits
	cacheBytes  int64
	logger      *typedjson.Logger
	metrics     typedjson.MetricsCollector
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

// WithCompression stores versions compressed and base64 encoded.
// By default versions are stored as plain typed JSON.
func WithCompression(c Compression) StoreOption {
	return func(o *storeOptions) {
		o.compression = c
	}
}

// WithRetain keeps only the newest n versions of each pipeline.
// Zero (the default) keeps all versions.
func WithRetain(n int) StoreOption {
	return func(o *storeOptions) {
		o.retain = max(n, 0)
	}
}

// WithConcurrency bounds the number of pipelines LoadAll reads at once.
// Default 8.
func WithConcurrency(n int) StoreOption {
	return func(o *storeOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLimits wraps the underlying blob store with blobstore.Limit.
// Conditional writes of the underlying store are kept.
func WithLimits(l blobstore.Limits) StoreOption {
	return func(o *storeOptions) {
		o.limits = &l
	}
}

// WithCache keeps up to capacity bytes of stored versions in memory.
// Versions never change once written, so cached reads skip the blob store.
func WithCache(capacity int64) StoreOption {
	return func(o *storeOptions) {
		o.cacheBytes = capacity
	}
}

// WithLogger sets the logger. Default discards all records.
func WithLogger(l *typedjson.Logger) StoreOption {
	return func(o *storeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc typedjson.MetricsCollector) StoreOption {
	return func(o *storeOptions) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

// Store keeps numbered versions of pipeline states.
//
// Each pipeline owns the blobs below "<pipeline>/": one STATE-<version>.json
// per saved version and a CURRENT blob naming the latest one. A version is
// written before CURRENT moves to it, so a crashed save leaves the previous
// state current.
//
// Saves through one Store are serialized. Concurrent writers in different
// processes are detected when the blob store implements
// blobstore.ConditionalStore, or routes CURRENT through a commit store such
// as s3.DDBCommitStore.
type Store struct {
	blobs blobstore.Store
	cache *cache.LRU // nil if disabled
	opts  storeOptions
	mu    sync.Mutex
}

// NewStore creates a state store on top of blobs.
func NewStore(blobs blobstore.Store, optFns ...StoreOption) *Store {
	o := storeOptions{
		compression: None,
		concurrency: 8,
		logger:      typedjson.NoopLogger(),
		metrics:     typedjson.NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.limits != nil {
		blobs = blobstore.Limit(blobs, *o.limits)
	}
	s := &Store{blobs: blobs, opts: o}
	if o.cacheBytes > 0 {
		s.cache = cache.NewLRU(o.cacheBytes)
	}
	return s
}

func versionName(pipeline string, version int64) string {
	return fmt.Sprintf("%s/%s%06d%s", pipeline, versionPrefix, version, versionSuffix)
}

func parseVersionName(name string) (int64, bool) {
	base := path.Base(name)
	digits, ok := strings.CutPrefix(base, versionPrefix)
	if !ok {
		return 0, false
	}
	digits, ok = strings.CutSuffix(digits, versionSuffix)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// current returns the latest version of pipeline, or 0 if none was saved.
func (s *Store) current(ctx context.Context, pipeline string) (int64, error) {
	data, err := s.blobs.Get(ctx, pipeline+"/"+currentName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	v, ok := parseVersionName(strings.TrimSpace(string(data)))
	if !ok {
		return 0, fmt.Errorf("%w: malformed %s pointer %q", ErrInvalidState, currentName, data)
	}
	return v, nil
}

// Save stores v as the next version of pipeline and returns that version.
// v must be an object; the stored copy carries the version under
// VersionKey. v itself is not modified.
func (s *Store) Save(ctx context.Context, pipeline string, v value.Value) (version int64, err error) {
	start := time.Now()
	size := 0
	defer func() {
		s.opts.metrics.RecordStateSave(size, time.Since(start), err)
		s.opts.logger.LogStateSave(ctx, pipeline, version, size, err)
	}()

	if err := blobstore.ValidateName(pipeline); err != nil {
		return 0, err
	}
	root, ok := v.AsObject()
	if !ok {
		return 0, fmt.Errorf("%w: expected object, got %s", ErrInvalidState, v.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.current(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	// A save that failed after writing its blob leaves a version newer
	// than CURRENT; skip past it.
	versions, err := s.Versions(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	if n := len(versions); n > 0 && versions[n-1] > cur {
		cur = versions[n-1]
	}
	version = cur + 1

	root = root.Clone()
	root.Set(VersionKey, value.Int(version))

	data, err := s.encode(value.Obj(root))
	if err != nil {
		return 0, err
	}
	size = len(data)

	name := versionName(pipeline, version)
	if cs, ok := s.blobs.(blobstore.ConditionalStore); ok {
		if err := cs.PutIfNotExists(ctx, name, data); err != nil {
			if errors.Is(err, blobstore.ErrConflict) {
				return 0, fmt.Errorf("%w: version %d of %s", ErrConcurrentModification, version, pipeline)
			}
			return 0, err
		}
	} else if err := s.blobs.Put(ctx, name, data); err != nil {
		return 0, err
	}

	if err := s.blobs.Put(ctx, pipeline+"/"+currentName, []byte(path.Base(name))); err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Set(name, data)
	}

	if s.opts.retain > 0 {
		if err := s.prune(ctx, pipeline); err != nil {
			s.opts.logger.WarnContext(ctx, "state prune failed", "pipeline", pipeline, "error", err)
		}
	}
	return version, nil
}

func (s *Store) encode(v value.Value) ([]byte, error) {
	if s.opts.compression == None {
		return Serialize(v)
	}
	packed, err := Compress(v, s.opts.compression)
	if err != nil {
		return nil, err
	}
	return []byte(packed), nil
}

// decode accepts both plain typed JSON and Compress output.
func decode(data []byte) (value.Value, error) {
	return Decompress(string(data))
}

// Load returns the latest state of pipeline, or ErrNoState.
func (s *Store) Load(ctx context.Context, pipeline string) (value.Value, error) {
	if err := blobstore.ValidateName(pipeline); err != nil {
		return value.Value{}, err
	}
	cur, err := s.current(ctx, pipeline)
	if err != nil {
		return value.Value{}, err
	}
	if cur == 0 {
		s.opts.logger.LogStateLoad(ctx, pipeline, 0, ErrNoState)
		return value.Value{}, fmt.Errorf("%w: %s", ErrNoState, pipeline)
	}
	return s.LoadVersion(ctx, pipeline, cur)
}

// LoadVersion returns a specific saved version of pipeline.
func (s *Store) LoadVersion(ctx context.Context, pipeline string, version int64) (v value.Value, err error) {
	start := time.Now()
	size := 0
	defer func() {
		s.opts.metrics.RecordStateLoad(size, time.Since(start), err)
		s.opts.logger.LogStateLoad(ctx, pipeline, version, err)
	}()

	data, err := s.read(ctx, versionName(pipeline, version))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return value.Value{}, fmt.Errorf("%w: %s version %d", ErrNoState, pipeline, version)
		}
		return value.Value{}, err
	}
	size = len(data)
	return decode(data)
}

func (s *Store) read(ctx context.Context, name string) ([]byte, error) {
	if s.cache == nil {
		return s.blobs.Get(ctx, name)
	}
	if data, ok := s.cache.Get(name); ok {
		return data, nil
	}
	data, err := s.blobs.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	s.cache.Set(name, data)
	return data, nil
}

// LoadAll loads the latest state of every pipeline concurrently.
// Pipelines without saved state are left out of the result.
func (s *Store) LoadAll(ctx context.Context, pipelines ...string) (map[string]value.Value, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]value.Value, len(pipelines))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.concurrency)

	for _, p := range pipelines {
		g.Go(func() error {
			v, err := s.Load(gctx, p)
			if err != nil {
				if errors.Is(err, ErrNoState) {
					return nil
				}
				return fmt.Errorf("load %s: %w", p, err)
			}
			mu.Lock()
			out[p] = v
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Versions returns the saved versions of pipeline in ascending order.
func (s *Store) Versions(ctx context.Context, pipeline string) ([]int64, error) {
	if err := blobstore.ValidateName(pipeline); err != nil {
		return nil, err
	}
	names, err := s.blobs.List(ctx, pipeline+"/"+versionPrefix)
	if err != nil {
		return nil, err
	}
	versions := make([]int64, 0, len(names))
	for _, n := range names {
		if v, ok := parseVersionName(n); ok && path.Dir(n) == pipeline {
			versions = append(versions, v)
		}
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions, nil
}

// Drop loads the state of pipeline, applies DropResources and saves the
// result as a new version. Nothing is saved when nothing was dropped.
func (s *Store) Drop(ctx context.Context, pipeline string, opts DropOptions) (DropInfo, error) {
	current, err := s.Load(ctx, pipeline)
	if err != nil {
		return DropInfo{DropAll: opts.DropAll}, err
	}
	next, info, err := DropResources(current, opts)
	if err != nil {
		return info, err
	}
	if len(info.ResourceStates) == 0 && len(info.StatePaths) == 0 {
		return info, nil
	}
	if _, err := s.Save(ctx, pipeline, next); err != nil {
		return info, err
	}
	return info, nil
}

// Delete removes every version of pipeline and its CURRENT pointer.
func (s *Store) Delete(ctx context.Context, pipeline string) error {
	versions, err := s.Versions(ctx, pipeline)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache != nil {
		defer s.cache.RemovePrefix(pipeline + "/")
	}

	if err := s.blobs.Delete(ctx, pipeline+"/"+currentName); err != nil {
		return err
	}
	for _, v := range versions {
		if err := s.blobs.Delete(ctx, versionName(pipeline, v)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) prune(ctx context.Context, pipeline string) error {
	versions, err := s.Versions(ctx, pipeline)
	if err != nil {
		return err
	}
	if len(versions) <= s.opts.retain {
		return nil
	}
	for _, v := range versions[:len(versions)-s.opts.retain] {
		name := versionName(pipeline, v)
		if s.cache != nil {
			s.cache.Remove(name)
		}
		if err := s.blobs.Delete(ctx, name); err != nil {
			return err
		}
	}
	return nil
}
