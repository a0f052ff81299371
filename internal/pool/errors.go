package pool

import "errors"

var (
	// ErrUninitializedFactory возвращается из Take, когда пул пуст,
	// а фабрика ресурсов не задана.
	ErrUninitializedFactory = errors.New("pool: resource factory is not configured")

	// ErrInvalidResource возвращается из Put для nil-ресурса
	// или ресурса, который уже лежит в пуле.
	ErrInvalidResource = errors.New("pool: invalid resource")
)
