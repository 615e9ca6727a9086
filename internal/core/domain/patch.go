package domain

import (
	"os"
	"path/filepath"
	"time"
)

const (
	// PatchFileName is the default patch file name.
	PatchFileName = "pulse.yaml"
	// DefaultFPS is the frame rate used when a patch does not set one.
	DefaultFPS = 60.0
	// DefaultDebounce is the watcher debounce window.
	DefaultDebounce = 50 * time.Millisecond
	// DefaultCacheDir is the compile cache location relative to the patch root.
	DefaultCacheDir = ".pulse/cache"
	// DirPerm is the default permission for directories.
	DirPerm = 0o750
	// FilePerm is the default permission for files.
	FilePerm = 0o600
)

// CompilerSettings configures the external compiler.
type CompilerSettings struct {
	// Command is an argv template. Placeholders: {input} {output} {entry} {stage} {name}.
	Command []string
}

// Settings are the host-level options of a patch.
type Settings struct {
	BPM             float64
	FPS             float64
	Frames          int
	ResourceFolders []string
	Compiler        CompilerSettings
	CacheDir        string
	Debounce        time.Duration
	MetricsAddr     string
	JSONLogs        bool
}

// DefaultSettings returns the settings used for missing patch fields.
func DefaultSettings() Settings {
	return Settings{
		BPM:      DefaultBPM,
		FPS:      DefaultFPS,
		Frames:   1,
		CacheDir: DefaultCacheDir,
		Debounce: DefaultDebounce,
	}
}

// Patch is a loaded patch file: the root composite, its user symbols and the outputs
// the host pulls every frame.
type Patch struct {
	Path     string
	Root     string
	Settings Settings
	Symbol   *Symbol
	Symbols  map[string]*Symbol
	Outputs  []string
}

// CacheDirPath returns the absolute compile cache directory.
func (p *Patch) CacheDirPath() string {
	if filepath.IsAbs(p.Settings.CacheDir) {
		return p.Settings.CacheDir
	}
	return filepath.Join(p.Root, p.Settings.CacheDir)
}

// ResourceFolderPaths returns the absolute resource folders, falling back to the patch root.
func (p *Patch) ResourceFolderPaths() []string {
	if len(p.Settings.ResourceFolders) == 0 {
		return []string{p.Root}
	}
	folders := make([]string, 0, len(p.Settings.ResourceFolders))
	for _, f := range p.Settings.ResourceFolders {
		if !filepath.IsAbs(f) {
			f = filepath.Join(p.Root, f)
		}
		folders = append(folders, filepath.Clean(f))
	}
	return folders
}

// ExistingResourceFolders returns the resource folders that exist on disk.
func (p *Patch) ExistingResourceFolders() []string {
	var out []string
	for _, f := range p.ResourceFolderPaths() {
		if info, err := os.Stat(f); err == nil && info.IsDir() {
			out = append(out, f)
		}
	}
	return out
}
