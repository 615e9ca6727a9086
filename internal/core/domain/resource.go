package domain

import (
	"context"
	"fmt"
	"time"
)

// Stage names the pipeline stage a resource is compiled for.
type Stage string

// Common stages.
const (
	StageVertex   Stage = "vertex"
	StageFragment Stage = "fragment"
	StageCompute  Stage = "compute"
	// StageCue compiles the source as a CUE parameter program.
	StageCue Stage = "cue"
)

// ResourceKey identifies a cache entry. Source is a file path relative to the resource
// folders, or the source text itself when Inline is set.
type ResourceKey struct {
	Source     string
	Inline     bool
	EntryPoint string
	Stage      Stage
}

func (k ResourceKey) String() string {
	src := k.Source
	if k.Inline {
		src = fmt.Sprintf("inline:%d", len(k.Source))
	}
	return fmt.Sprintf("%s#%s@%s", src, k.EntryPoint, k.Stage)
}

// Fingerprint is a content hash of a resource source together with its entry point and stage.
type Fingerprint uint64

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// ResourceState is the lifecycle state of a cache entry.
type ResourceState uint8

const (
	// ResourceUncompiled entries have never produced an artifact.
	ResourceUncompiled ResourceState = iota
	// ResourceStale entries saw a change notification and recompile on the next request.
	ResourceStale
	// ResourceCompiling entries have a compile in flight.
	ResourceCompiling
	// ResourceReady entries hold an artifact matching their last seen source.
	ResourceReady
)

func (s ResourceState) String() string {
	switch s {
	case ResourceStale:
		return "stale"
	case ResourceCompiling:
		return "compiling"
	case ResourceReady:
		return "ready"
	default:
		return "uncompiled"
	}
}

// Artifact is the output of a successful compile.
type Artifact struct {
	Key         ResourceKey
	DebugName   string
	Fingerprint Fingerprint
	Bytes       []byte
	CompiledAt  time.Time
}

// CompileRequest is handed to a compiler.
type CompileRequest struct {
	Key         ResourceKey
	DebugName   string
	Fingerprint Fingerprint
	// Path is the resolved file path, empty for inline sources.
	Path   string
	Source []byte
	// Command is the configured external compiler command template.
	Command []string
}

// CompileRecord is the persisted description of a compiled artifact.
type CompileRecord struct {
	Fingerprint string    `json:"fingerprint"`
	DebugName   string    `json:"debugName"`
	Source      string    `json:"source"`
	EntryPoint  string    `json:"entryPoint"`
	Stage       string    `json:"stage"`
	Size        int       `json:"size"`
	CompiledAt  time.Time `json:"compiledAt"`
}

// ResourceResult is returned by a resource lookup. Artifact holds the last good artifact
// and may be set together with Err when the newest compile failed.
type ResourceResult struct {
	Artifact *Artifact
	Err      error
}

// ResourceHandle is a counted reference to a cache entry held by one dependent.
type ResourceHandle interface {
	// Get returns the artifact for the current source, compiling it when needed.
	Get(ctx context.Context) ResourceResult
	// Release drops the reference. The entry is evicted when no references remain.
	Release()
}

// ResourceProvider hands out resource handles. The invalidate callback runs on the
// evaluation goroutine whenever the entry artifact changes.
type ResourceProvider interface {
	Acquire(key ResourceKey, debugName string, invalidate func()) (ResourceHandle, error)
}
