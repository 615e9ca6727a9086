package ports

//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks

// SourceResolver locates and reads resource sources.
type SourceResolver interface {
	// Resolve returns the absolute path of a resource file. Relative paths are searched
	// in the given folders in order.
	Resolve(path string, folders []string) (string, error)
	// Read returns the content of a resolved path.
	Read(path string) ([]byte, error)
}
