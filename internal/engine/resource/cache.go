// Package resource implements the hot-reload cache of externally compiled artifacts.
//
// Entries are keyed by source, entry point and stage. Compiles run at most once per key at
// a time. A failed compile keeps the last good artifact. Change notifications from the file
// watcher are queued and applied by Drain, which the frame driver calls on the evaluation
// goroutine before each frame.
package resource

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Cache implements domain.ResourceProvider.
type Cache struct {
	compiler ports.Compiler
	resolver ports.SourceResolver
	hasher   ports.Hasher
	store    ports.CompileStore
	sink     ports.DiagnosticSink
	metrics  ports.Metrics

	folders  []string
	cacheDir string
	command  []string

	compileGroup singleflight.Group

	mu      sync.Mutex
	entries map[domain.ResourceKey]*entry

	queueMu sync.Mutex
	changed []string
}

type entry struct {
	key       domain.ResourceKey
	debugName string
	path      string
	state     domain.ResourceState
	artifact  *domain.Artifact
	lastErr   error
	// failed is the fingerprint of the newest failed compile.
	failed domain.Fingerprint
	// restale is set when a change arrives while a compile is in flight.
	restale bool
	// version is bumped whenever the entry artifact may have changed for dependents.
	version uint64
	refs    int
	subs    []*handle
}

// Option configures a Cache.
type Option func(*Cache)

// WithStore persists compiled artifacts under dir.
func WithStore(store ports.CompileStore, dir string) Option {
	return func(c *Cache) {
		c.store = store
		c.cacheDir = dir
	}
}

// WithSink routes compile diagnostics to sink.
func WithSink(sink ports.DiagnosticSink) Option {
	return func(c *Cache) { c.sink = sink }
}

// WithMetrics records cache and compile counters.
func WithMetrics(m ports.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithFolders sets the folders relative resource paths are searched in.
func WithFolders(folders ...string) Option {
	return func(c *Cache) { c.folders = folders }
}

// WithCommand sets the external compiler command template.
func WithCommand(command []string) Option {
	return func(c *Cache) { c.command = command }
}

// New creates an empty cache.
func New(compiler ports.Compiler, resolver ports.SourceResolver, hasher ports.Hasher, opts ...Option) *Cache {
	c := &Cache{
		compiler: compiler,
		resolver: resolver,
		hasher:   hasher,
		entries:  make(map[domain.ResourceKey]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Acquire returns a counted handle on the entry for key, creating the entry on first use.
// invalidate is called from Drain whenever the artifact behind the handle may have changed.
func (c *Cache) Acquire(key domain.ResourceKey, debugName string, invalidate func()) (domain.ResourceHandle, error) {
	if key.Source == "" {
		return nil, zerr.With(domain.ErrEmptySourcePath, "resource", debugName)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(key, debugName)
	e.refs++
	h := &handle{cache: c, key: key, invalidate: invalidate}
	e.subs = append(e.subs, h)
	return h, nil
}

// GetOrCompile returns the artifact for key. A ready entry is returned as is. Otherwise the
// source is read and fingerprinted; an unchanged fingerprint reuses the current artifact and a
// fingerprint that already failed reuses the failure. Anything else is compiled, at most once
// at a time per key. An entry created here without Acquire lives until the next Drain.
func (c *Cache) GetOrCompile(ctx context.Context, key domain.ResourceKey, debugName string) domain.ResourceResult {
	if key.Source == "" {
		return domain.ResourceResult{Err: zerr.With(domain.ErrEmptySourcePath, "resource", debugName)}
	}

	c.mu.Lock()
	e := c.entryLocked(key, debugName)
	if e.state == domain.ResourceReady {
		res := domain.ResourceResult{Artifact: e.artifact, Err: e.lastErr}
		c.mu.Unlock()
		c.lookup(true)
		return res
	}
	c.mu.Unlock()

	req, err := c.request(e)
	if err != nil {
		c.mu.Lock()
		e.lastErr = err
		res := domain.ResourceResult{Artifact: e.artifact, Err: err}
		c.mu.Unlock()
		c.report(e, err)
		return res
	}

	c.mu.Lock()
	switch {
	case e.artifact != nil && e.artifact.Fingerprint == req.Fingerprint:
		e.state = domain.ResourceReady
		e.lastErr = nil
		res := domain.ResourceResult{Artifact: e.artifact}
		c.mu.Unlock()
		c.lookup(true)
		return res
	case e.lastErr != nil && e.failed == req.Fingerprint:
		res := domain.ResourceResult{Artifact: e.artifact, Err: e.lastErr}
		c.mu.Unlock()
		c.lookup(true)
		return res
	}
	e.state = domain.ResourceCompiling
	c.mu.Unlock()
	c.lookup(false)

	_, _, _ = c.compileGroup.Do(flightKey(key), func() (any, error) {
		c.compile(ctx, e, req)
		return nil, nil
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.ResourceResult{Artifact: e.artifact, Err: e.lastErr}
}

// request resolves and reads the source of e.
func (c *Cache) request(e *entry) (domain.CompileRequest, error) {
	req := domain.CompileRequest{
		Key:       e.key,
		DebugName: e.debugName,
		Command:   c.command,
	}
	if e.key.Inline {
		req.Source = []byte(e.key.Source)
	} else {
		path, err := c.resolver.Resolve(e.key.Source, c.folders)
		if err != nil {
			return req, err
		}
		src, err := c.resolver.Read(path)
		if err != nil {
			return req, err
		}
		c.mu.Lock()
		e.path = path
		c.mu.Unlock()
		req.Path = path
		req.Source = src
	}
	req.Fingerprint = c.hasher.Fingerprint(e.key, req.Source)
	return req, nil
}

// compile produces an artifact for req and records the outcome on e.
func (c *Cache) compile(ctx context.Context, e *entry, req domain.CompileRequest) {
	c.mu.Lock()
	done := (e.artifact != nil && e.artifact.Fingerprint == req.Fingerprint) ||
		(e.lastErr != nil && e.failed == req.Fingerprint)
	if done {
		// A flight for the same source finished while this caller was reading it.
		c.settleLocked(e)
	}
	c.mu.Unlock()
	if done {
		return
	}

	var err error
	art := c.load(req)
	if art == nil {
		start := time.Now()
		var out []byte
		out, err = c.compiler.Compile(ctx, req)
		if c.metrics != nil {
			c.metrics.Compiled(time.Since(start), err != nil)
		}
		if err == nil {
			art = &domain.Artifact{
				Key:         req.Key,
				DebugName:   req.DebugName,
				Fingerprint: req.Fingerprint,
				Bytes:       out,
				CompiledAt:  time.Now(),
			}
			c.save(e, art)
		}
	}

	c.mu.Lock()
	if err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrCompileFailed.Error()), "resource", req.DebugName)
		e.lastErr = err
		e.failed = req.Fingerprint
	} else {
		e.artifact = art
		e.lastErr = nil
		e.failed = 0
		e.version++
	}
	c.settleLocked(e)
	c.mu.Unlock()

	if err != nil {
		c.report(e, err)
		return
	}
	c.emit(domain.Diagnostic{
		Severity:  domain.SeverityInfo,
		Subsystem: domain.SubsystemResource,
		Message:   fmt.Sprintf("compiled %s (%s)", req.DebugName, req.Fingerprint),
	})
}

// settleLocked moves e out of the compiling state.
func (c *Cache) settleLocked(e *entry) {
	switch {
	case e.restale:
		e.restale = false
		e.state = domain.ResourceStale
	case e.artifact != nil:
		e.state = domain.ResourceReady
	default:
		e.state = domain.ResourceUncompiled
	}
}

// load returns a persisted artifact for req, if any.
func (c *Cache) load(req domain.CompileRequest) *domain.Artifact {
	if c.store == nil || c.cacheDir == "" {
		return nil
	}
	rec, blob, err := c.store.Get(c.cacheDir, req.Fingerprint)
	if err != nil {
		c.emit(domain.Diagnostic{
			Severity:  domain.SeverityWarning,
			Subsystem: domain.SubsystemResource,
			Message:   "compile cache read failed for " + req.DebugName,
			Err:       err,
		})
		return nil
	}
	if rec == nil {
		return nil
	}
	return &domain.Artifact{
		Key:         req.Key,
		DebugName:   req.DebugName,
		Fingerprint: req.Fingerprint,
		Bytes:       blob,
		CompiledAt:  rec.CompiledAt,
	}
}

func (c *Cache) save(e *entry, art *domain.Artifact) {
	if c.store == nil || c.cacheDir == "" {
		return
	}
	src := e.key.Source
	if e.key.Inline {
		src = "inline"
	}
	rec := domain.CompileRecord{
		Fingerprint: art.Fingerprint.String(),
		DebugName:   art.DebugName,
		Source:      src,
		EntryPoint:  e.key.EntryPoint,
		Stage:       string(e.key.Stage),
		Size:        len(art.Bytes),
		CompiledAt:  art.CompiledAt,
	}
	if err := c.store.Put(c.cacheDir, rec, art.Bytes); err != nil {
		c.emit(domain.Diagnostic{
			Severity:  domain.SeverityWarning,
			Subsystem: domain.SubsystemResource,
			Message:   "compile cache write failed for " + art.DebugName,
			Err:       err,
		})
	}
}

// NotifyChanged queues changed file paths. Relative paths are taken against the working
// directory, matching the absolute paths sources resolve to. It is safe to call from any
// goroutine.
func (c *Cache) NotifyChanged(paths ...string) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		c.changed = append(c.changed, filepath.Clean(p))
	}
}

// Drain applies queued change notifications and calls the invalidate callback of every
// handle whose entry changed since the handle last read it. Entries no handle holds are
// dropped. It must run on the evaluation goroutine. It returns the number of callbacks made.
func (c *Cache) Drain() int {
	c.queueMu.Lock()
	changed := c.changed
	c.changed = nil
	c.queueMu.Unlock()

	var notify []func()
	var reloaded []string

	c.mu.Lock()
	for key, e := range c.entries {
		if e.refs <= 0 && e.state != domain.ResourceCompiling {
			delete(c.entries, key)
			continue
		}
		if e.path != "" && slices.Contains(changed, e.path) {
			reloaded = append(reloaded, e.debugName)
			if e.state == domain.ResourceCompiling {
				e.restale = true
			} else {
				e.state = domain.ResourceStale
			}
			e.version++
		}
		for _, h := range e.subs {
			if h.seen < e.version && h.invalidate != nil {
				h.seen = e.version
				notify = append(notify, h.invalidate)
			}
		}
	}
	c.mu.Unlock()

	slices.Sort(reloaded)
	for _, name := range reloaded {
		c.emit(domain.Diagnostic{
			Severity:  domain.SeverityDebug,
			Subsystem: domain.SubsystemWatcher,
			Message:   "source changed: " + name,
		})
	}
	for _, fn := range notify {
		fn()
	}
	if c.metrics != nil && len(notify) > 0 {
		c.metrics.Invalidated(len(notify))
	}
	return len(notify)
}

// Pending reports whether change notifications are waiting for Drain.
func (c *Cache) Pending() bool {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	return len(c.changed) > 0
}

// Keys returns the keys of every live entry.
func (c *Cache) Keys() []domain.ResourceKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]domain.ResourceKey, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b domain.ResourceKey) int {
		return strings.Compare(a.String(), b.String())
	})
	return keys
}

// Entry describes one cache entry.
type Entry struct {
	Key         domain.ResourceKey
	DebugName   string
	Path        string
	State       domain.ResourceState
	Refs        int
	Fingerprint domain.Fingerprint
	Err         error
}

// Entries returns a snapshot of every live entry ordered by debug name.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		info := Entry{
			Key:       e.key,
			DebugName: e.debugName,
			Path:      e.path,
			State:     e.state,
			Refs:      e.refs,
			Err:       e.lastErr,
		}
		if e.artifact != nil {
			info.Fingerprint = e.artifact.Fingerprint
		}
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return strings.Compare(a.DebugName, b.DebugName)
	})
	return out
}

func (c *Cache) entryLocked(key domain.ResourceKey, debugName string) *entry {
	if e, ok := c.entries[key]; ok {
		return e
	}
	if debugName == "" {
		debugName = FallbackName(key)
	}
	e := &entry{key: key, debugName: debugName}
	c.entries[key] = e
	return e
}

func (c *Cache) release(h *handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h.released {
		return
	}
	h.released = true
	e, ok := c.entries[h.key]
	if !ok {
		return
	}
	e.subs = slices.DeleteFunc(e.subs, func(s *handle) bool { return s == h })
	e.refs--
	if e.refs <= 0 {
		delete(c.entries, h.key)
	}
}

func (c *Cache) markSeen(h *handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[h.key]; ok {
		h.seen = e.version
	}
}

func (c *Cache) lookup(hit bool) {
	if c.metrics != nil {
		c.metrics.CacheLookup(hit)
	}
}

func (c *Cache) report(e *entry, err error) {
	c.emit(domain.Diagnostic{
		Severity:  domain.SeverityError,
		Subsystem: domain.SubsystemResource,
		Message:   fmt.Sprintf("%s: %v", e.debugName, err),
		Err:       err,
	})
}

func (c *Cache) emit(d domain.Diagnostic) {
	if c.sink == nil {
		return
	}
	if d.Time.IsZero() {
		d.Time = time.Now()
	}
	c.sink.Report(d)
}

func flightKey(k domain.ResourceKey) string {
	return fmt.Sprintf("%t\x00%s\x00%s\x00%s", k.Inline, k.Stage, k.EntryPoint, k.Source)
}
