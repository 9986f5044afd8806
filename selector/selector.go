package selector

import "fmt"

type Item interface {
	// IsDisabled checks if the item is currently disabled.
	IsDisabled() bool
	// GetName returns the name of the item (for logging/debugging).
	GetName() string
}

// Selector picks one of its items for each request.
type Selector[T Item] interface {
	AddItem(T)
	Select() (T, error)
	Len() int
	TotalConfigWeight() int
	GetType() string
}

// New returns the selector registered under typ.
func New[T WeightedItem](typ string) (Selector[T], error) {
	switch typ {
	case WRR:
		return NewWeightedRoundRobinSelector[T](), nil
	case FALLBACK:
		return NewFallbackSelector[T](), nil
	}
	return nil, fmt.Errorf("unrecognized selector: %s", typ)
}
