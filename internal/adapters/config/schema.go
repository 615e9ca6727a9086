package config

import (
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Patchfile represents the structure of the pulse.yaml file.
type Patchfile struct {
	Version  string             `yaml:"version"`
	Root     string             `yaml:"root"`
	Settings SettingsDTO        `yaml:"settings"`
	Symbols  Ordered[SymbolDTO] `yaml:"symbols"`
	Patch    SymbolDTO          `yaml:"patch"`
	Outputs  []string           `yaml:"outputs"`
}

// SettingsDTO represents the host settings of a patch. Unset fields take defaults.
type SettingsDTO struct {
	BPM             *float64    `yaml:"bpm"`
	FPS             *float64    `yaml:"fps"`
	Frames          *int        `yaml:"frames"`
	ResourceFolders []string    `yaml:"resourceFolders"`
	Compiler        CompilerDTO `yaml:"compiler"`
	CacheDir        string      `yaml:"cacheDir"`
	Debounce        string      `yaml:"debounce"`
	MetricsAddr     string      `yaml:"metricsAddr"`
	JSONLogs        bool        `yaml:"jsonLogs"`
}

// CompilerDTO configures the external compiler command.
type CompilerDTO struct {
	Command []string `yaml:"command"`
}

// SymbolDTO represents a composite: the root patch or a user symbol.
type SymbolDTO struct {
	Name        string            `yaml:"name"`
	Inputs      Ordered[InputDTO] `yaml:"inputs"`
	Outputs     Ordered[string]   `yaml:"outputs"`
	Transform   TransformDTO      `yaml:"transform"`
	Nodes       Ordered[NodeDTO]  `yaml:"nodes"`
	Connections []ConnectionDTO   `yaml:"connections"`
}

// InputDTO declares a composite input.
type InputDTO struct {
	Type    string `yaml:"type"`
	Default any    `yaml:"default"`
}

// NodeDTO declares a child instance.
type NodeDTO struct {
	Symbol string         `yaml:"symbol"`
	Inputs map[string]any `yaml:"inputs"`
}

// TransformDTO declares the time transform of a composite.
type TransformDTO struct {
	Offset float64 `yaml:"offset"`
	Scale  float64 `yaml:"scale"`
}

// ConnectionDTO wires "child.Slot" or ".Slot" endpoints.
type ConnectionDTO struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Entry is one key of an Ordered mapping.
type Entry[T any] struct {
	Name  string
	Value T
}

// Ordered is a YAML mapping that keeps its keys in document order.
type Ordered[T any] []Entry[T]

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Ordered[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return zerr.With(zerr.New("expected a mapping"), "line", node.Line)
	}
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if seen[key.Value] {
			return zerr.With(zerr.With(zerr.New("duplicate key"), "key", key.Value), "line", key.Line)
		}
		seen[key.Value] = true

		var v T
		if err := value.Decode(&v); err != nil {
			return zerr.With(err, "key", key.Value)
		}
		*o = append(*o, Entry[T]{Name: key.Value, Value: v})
	}
	return nil
}
