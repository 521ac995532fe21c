package strategy

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Constructor builds a strategy given its window parameter. Strategies without a
// parameter ignore it.
type Constructor func(n int) Strategy

var registry = map[string]Constructor{
	NameNaive:         func(int) Strategy { return Naive() },
	NameSeasonalNaive: SeasonalNaive,
	NameMean:          MovingAverage,
	"moving_average":  MovingAverage,
	NameDrift:         Drift,
}

// Lookup returns the registered strategy for name parameterized with n
func Lookup(name string, n int) (Strategy, error) {
	c, exists := registry[name]
	if !exists {
		return nil, fmt.Errorf("%q, %w", name, ErrUnknownStrategy)
	}
	return c(n), nil
}

// Names returns the sorted names of all registered strategies
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
