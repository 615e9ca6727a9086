package domain

import "go.trai.ch/zerr"

var (
	// ErrCycleDetected is returned when an edit or an evaluation would close a dependency loop.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrInstanceNotFound is returned when an instance id is not present in the graph.
	ErrInstanceNotFound = zerr.New("instance not found")

	// ErrSlotNotFound is returned when a slot id does not name an input or output of an instance.
	ErrSlotNotFound = zerr.New("slot not found")

	// ErrTypeMismatch is returned when a source value type is not assignable to an input type.
	ErrTypeMismatch = zerr.New("type mismatch")

	// ErrInvalidConnection is returned when a source is not visible from the target input.
	ErrInvalidConnection = zerr.New("invalid connection")

	// ErrAlreadyConnected is returned when a single input is connected twice or a multi-input
	// already lists the same source.
	ErrAlreadyConnected = zerr.New("input already connected")

	// ErrNotConnected is returned when disconnecting a source that is not bound to the input.
	ErrNotConnected = zerr.New("input not connected to source")

	// ErrRootRemoval is returned when removing the root instance of a graph.
	ErrRootRemoval = zerr.New("root instance cannot be removed")

	// ErrDuplicateInstance is returned when a composite already owns a child with the same name.
	ErrDuplicateInstance = zerr.New("duplicate instance name")

	// ErrNotComposite is returned when children are added to a leaf instance.
	ErrNotComposite = zerr.New("instance is not a composite")

	// ErrInvalidSymbol is returned when a symbol definition is inconsistent.
	ErrInvalidSymbol = zerr.New("invalid symbol")

	// ErrUnknownSymbol is returned when a patch references a symbol that is not registered.
	ErrUnknownSymbol = zerr.New("unknown symbol")

	// ErrInvalidPath is returned when an output path cannot be parsed or resolved.
	ErrInvalidPath = zerr.New("invalid output path")

	// ErrUnforwardedOutput is returned when a composite output has no child output behind it.
	ErrUnforwardedOutput = zerr.New("composite output is not forwarded")

	// ErrRecomputeFailed is reported when an operator fails to produce a value.
	ErrRecomputeFailed = zerr.New("recompute failed")

	// ErrCompileFailed is returned when an external compiler rejects a resource.
	ErrCompileFailed = zerr.New("compile failed")

	// ErrNoCompiler is returned when no compiler is configured for a resource.
	ErrNoCompiler = zerr.New("no compiler configured for resource")

	// ErrEmptySourcePath is returned when a file resource has no path.
	ErrEmptySourcePath = zerr.New("resource source path is empty")

	// ErrSourceNotFound is returned when a resource file cannot be found in any resource folder.
	ErrSourceNotFound = zerr.New("resource source not found")

	// ErrSourceReadFailed is returned when a resource source cannot be read.
	ErrSourceReadFailed = zerr.New("failed to read resource source")

	// ErrResourceReleased is returned when a released resource handle is used.
	ErrResourceReleased = zerr.New("resource handle released")

	// ErrStoreCreateFailed is returned when the compile cache directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create compile cache directory")

	// ErrStoreReadFailed is returned when a compile record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read compile record")

	// ErrStoreUnmarshalFailed is returned when a compile record cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal compile record")

	// ErrStoreMarshalFailed is returned when a compile record cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal compile record")

	// ErrStoreWriteFailed is returned when a compile record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write compile record")

	// ErrConfigReadFailed is returned when the patch file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read patch file")

	// ErrConfigParseFailed is returned when the patch file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse patch file")

	// ErrConfigNotFound is returned when no patch file can be found.
	ErrConfigNotFound = zerr.New("could not find pulse.yaml")

	// ErrInvalidSettings is returned when patch settings are out of range.
	ErrInvalidSettings = zerr.New("invalid settings")

	// ErrFrameFailed is returned when one or more requested outputs could not be evaluated.
	ErrFrameFailed = zerr.New("frame evaluation failed")
)
