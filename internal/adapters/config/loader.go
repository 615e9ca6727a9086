// Package config provides the pulse.yaml loader.
package config

import (
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the patch file version this loader understands.
const SupportedVersion = "1"

// DefaultPatchName names the root composite when the patch does not.
const DefaultPatchName = "Patch"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger  ports.Logger
	Symbols ports.SymbolLibrary
}

// NewLoader creates a new Loader resolving node symbols from symbols.
func NewLoader(logger ports.Logger, symbols ports.SymbolLibrary) *Loader {
	return &Loader{Logger: logger, Symbols: symbols}
}

// Load reads the patch file at path. An empty path or a directory is searched upwards
// for pulse.yaml.
func (l *Loader) Load(path string) (*domain.Patch, error) {
	configPath, err := l.resolvePath(path)
	if err != nil {
		return nil, err
	}

	var pf Patchfile
	if err := readAndUnmarshalYAML(configPath, &pf); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	if pf.Version != "" && pf.Version != SupportedVersion && l.Logger != nil {
		l.Logger.Warn("unsupported patch version " + pf.Version + ", reading as version " + SupportedVersion)
	}

	settings, err := buildSettings(pf.Settings)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	b := newSymbolBuilder(l.Symbols, pf.Symbols)
	symbols := make(map[string]*domain.Symbol, len(pf.Symbols))
	for _, e := range pf.Symbols {
		sym, err := b.resolve(e.Name)
		if err != nil {
			return nil, zerr.With(err, "path", configPath)
		}
		symbols[e.Name] = sym
	}

	name := pf.Patch.Name
	if name == "" {
		name = DefaultPatchName
	}
	if _, taken := symbols[name]; taken || b.isBuiltin(name) {
		return nil, zerr.With(zerr.With(domain.ErrInvalidSymbol, "symbol", name), "reason", "patch name shadows a symbol")
	}
	root, err := b.compose(name, pf.Patch)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	outputs := pf.Outputs
	if len(outputs) == 0 {
		for _, out := range root.Outputs {
			outputs = append(outputs, "."+out.Name)
		}
	}

	return &domain.Patch{
		Path:     configPath,
		Root:     resolveRoot(configPath, pf.Root),
		Settings: settings,
		Symbol:   root,
		Symbols:  symbols,
		Outputs:  outputs,
	}, nil
}

func (l *Loader) resolvePath(path string) (string, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", zerr.Wrap(err, "failed to get working directory")
		}
		return findConfiguration(cwd)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return findConfiguration(path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve configuration path"), "path", path)
	}
	return abs, nil
}

// findConfiguration walks from dir to the filesystem root looking for pulse.yaml.
func findConfiguration(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve directory"), "dir", dir)
	}
	for {
		candidate := filepath.Join(current, domain.PatchFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", zerr.With(domain.ErrConfigNotFound, "cwd", dir)
		}
		current = parent
	}
}

func buildSettings(dto SettingsDTO) (domain.Settings, error) {
	s := domain.DefaultSettings()
	if dto.BPM != nil {
		if *dto.BPM <= 0 {
			return s, zerr.With(zerr.With(domain.ErrInvalidSettings, "field", "bpm"), "value", *dto.BPM)
		}
		s.BPM = *dto.BPM
	}
	if dto.FPS != nil {
		if *dto.FPS <= 0 {
			return s, zerr.With(zerr.With(domain.ErrInvalidSettings, "field", "fps"), "value", *dto.FPS)
		}
		s.FPS = *dto.FPS
	}
	if dto.Frames != nil {
		if *dto.Frames < 0 {
			return s, zerr.With(zerr.With(domain.ErrInvalidSettings, "field", "frames"), "value", *dto.Frames)
		}
		s.Frames = *dto.Frames
	}
	if dto.Debounce != "" {
		d, err := time.ParseDuration(dto.Debounce)
		if err != nil || d < 0 {
			return s, zerr.With(zerr.With(domain.ErrInvalidSettings, "field", "debounce"), "value", dto.Debounce)
		}
		s.Debounce = d
	}
	if dto.CacheDir != "" {
		s.CacheDir = dto.CacheDir
	}
	s.ResourceFolders = dto.ResourceFolders
	s.Compiler.Command = dto.Compiler.Command
	s.MetricsAddr = dto.MetricsAddr
	s.JSONLogs = dto.JSONLogs
	return s, nil
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(data, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
