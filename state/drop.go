package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/hupe1980/typedjson/value"
)

const (
	sourcesKey   = "sources"
	resourcesKey = "resources"

	// regexPrefix marks a resource selector as a regular expression rather
	// than a literal resource name.
	regexPrefix = "re:"
)

// ErrInvalidState is returned when a state document is not an object or
// its sources are malformed.
var ErrInvalidState = errors.New("invalid state document")

// DropOptions selects what DropResources removes.
type DropOptions struct {
	// Resources are resource names, or regular expressions prefixed with
	// "re:". A regular expression must match at the start of the name.
	Resources []string

	// StatePaths are dot-separated paths relative to each source state.
	// A "*" segment matches every key of an object.
	StatePaths []string

	// DropAll selects every resource and supersedes Resources.
	DropAll bool
}

// DropInfo reports what DropResources removed.
type DropInfo struct {
	// ResourceStates lists the reset resources, in source order.
	ResourceStates []string
	// StatePaths lists the deleted paths as "<source>.<path>".
	StatePaths []string
	// Warnings holds messages for selectors that matched nothing.
	Warnings []string
	// DropAll mirrors DropOptions.DropAll.
	DropAll bool
}

// CompileResourcePattern builds a single matcher from resource selectors.
// It returns nil when selectors is empty.
func CompileResourcePattern(selectors []string) (*regexp2.Regexp, error) {
	if len(selectors) == 0 {
		return nil, nil
	}
	alts := make([]string, 0, len(selectors))
	for _, s := range selectors {
		if re, ok := strings.CutPrefix(s, regexPrefix); ok {
			alts = append(alts, "(?:"+re+")")
		} else {
			alts = append(alts, "(?:"+regexp2.Escape(s)+"$)")
		}
	}
	return regexp2.Compile(`\A(?:`+strings.Join(alts, "|")+`)`, regexp2.None)
}

// DropResources returns a copy of state with the selected resource states
// reset and the selected state paths removed from every source. The input
// is not modified.
//
// The "resources" key of a source is never removed by a state path, even
// when a wildcard selects it.
func DropResources(state value.Value, opts DropOptions) (value.Value, DropInfo, error) {
	info := DropInfo{DropAll: opts.DropAll}

	root, ok := state.AsObject()
	if !ok {
		return value.Value{}, info, fmt.Errorf("%w: expected object, got %s", ErrInvalidState, state.Kind)
	}

	var (
		pattern *regexp2.Regexp
		err     error
	)
	if opts.DropAll {
		pattern, err = CompileResourcePattern([]string{regexPrefix + ".*"})
	} else {
		pattern, err = CompileResourcePattern(opts.Resources)
	}
	if err != nil {
		return value.Value{}, info, err
	}

	paths := make([][]string, 0, len(opts.StatePaths))
	for _, p := range opts.StatePaths {
		paths = append(paths, strings.Split(p, "."))
	}

	root = root.Clone()
	sourcesVal, ok := root.Get(sourcesKey)
	if !ok {
		return value.Obj(root), info, nil
	}
	sources, ok := sourcesVal.AsObject()
	if !ok {
		return value.Value{}, info, fmt.Errorf("%w: %q is %s", ErrInvalidState, sourcesKey, sourcesVal.Kind)
	}

	var rangeErr error
	sources.Range(func(name string, sv value.Value) bool {
		source, ok := sv.AsObject()
		if !ok {
			rangeErr = fmt.Errorf("%w: source %q is %s", ErrInvalidState, name, sv.Kind)
			return false
		}

		if pattern != nil {
			reset, err := resetResources(source, pattern)
			if err != nil {
				rangeErr = err
				return false
			}
			info.ResourceStates = append(info.ResourceStates, reset...)
		}

		var resolved [][]string
		for _, p := range resolvePaths(paths, source) {
			if len(p) != 1 || p[0] != resourcesKey {
				resolved = append(resolved, p)
			}
		}
		if len(paths) > 0 && len(resolved) == 0 {
			info.Warnings = append(info.Warnings,
				fmt.Sprintf("State paths %v did not select any paths in source %s", opts.StatePaths, name))
		}
		for _, p := range resolved {
			deletePath(source, p)
			info.StatePaths = append(info.StatePaths, name+"."+strings.Join(p, "."))
		}
		return true
	})
	if rangeErr != nil {
		return value.Value{}, DropInfo{DropAll: opts.DropAll}, rangeErr
	}

	return value.Obj(root), info, nil
}

// resetResources deletes the matching entries of source["resources"].
func resetResources(source *value.Object, pattern *regexp2.Regexp) ([]string, error) {
	rv, ok := source.Get(resourcesKey)
	if !ok {
		return nil, nil
	}
	resources, ok := rv.AsObject()
	if !ok {
		return nil, nil
	}

	var matched []string
	for _, key := range resources.Keys() {
		ok, err := pattern.MatchString(key)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, key)
		}
	}
	for _, key := range matched {
		resources.Delete(key)
	}
	return matched, nil
}

// resolvePaths expands wildcards against obj and returns the concrete
// paths that exist, without duplicates, in selector order. Keys may
// contain dots, so paths stay split into segments.
func resolvePaths(paths [][]string, obj *value.Object) [][]string {
	seen := make(map[string]struct{})
	var out [][]string
	for _, segs := range paths {
		walkPath(obj, segs, nil, func(p []string) {
			key := strings.Join(p, "\x00")
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				out = append(out, p)
			}
		})
	}
	return out
}

func walkPath(obj *value.Object, segs, prefix []string, emit func([]string)) {
	if len(segs) == 0 || obj == nil {
		return
	}
	visit := func(key string, v value.Value) {
		p := append(append([]string(nil), prefix...), key)
		if len(segs) == 1 {
			emit(p)
			return
		}
		if child, ok := v.AsObject(); ok {
			walkPath(child, segs[1:], p, emit)
		}
	}

	if segs[0] == "*" {
		obj.Range(func(key string, v value.Value) bool {
			visit(key, v)
			return true
		})
		return
	}
	if v, ok := obj.Get(segs[0]); ok {
		visit(segs[0], v)
	}
}

// deletePath removes the key at path. Missing parents are ignored, which
// happens when an enclosing path was deleted first.
func deletePath(obj *value.Object, path []string) {
	for _, seg := range path[:len(path)-1] {
		v, ok := obj.Get(seg)
		if !ok {
			return
		}
		if obj, ok = v.AsObject(); !ok {
			return
		}
	}
	obj.Delete(path[len(path)-1])
}
