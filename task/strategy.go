package task

import (
	"fmt"
	"strings"
)

const (
	Sequential Strategy = iota
	Centralized
	Dynamic
	Decentralized
)

// Strategy selects how rows are handed to ranks and committed to the image file
type Strategy int

var strategyNames = []string{
	"sequential", "centralized", "dynamic", "decentralized",
}

func (s Strategy) String() string {
	if s < Sequential || s > Decentralized {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

func ParseStrategy(name string) (Strategy, error) {
	for i, v := range strategyNames {
		if strings.EqualFold(name, v) {
			return Strategy(i), nil
		}
	}
	return Sequential, fmt.Errorf("unknown strategy %q (want one of %s)", name, strings.Join(strategyNames, ", "))
}

// MinimumPoolSize is the smallest pool a strategy can make progress with. The dynamic strategy needs at least one
// worker besides the coordinator.
func (s Strategy) MinimumPoolSize() int {
	if s == Dynamic {
		return 2
	}
	return 1
}

func (s Strategy) DefaultOutputFile() string {
	return fmt.Sprintf("mandelbrot_%s.ppm", s)
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
