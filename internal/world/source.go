package world

// Source defines the interface for loading an initial world.
type Source interface {
	Load() (*Store, error)
	Name() string
}
