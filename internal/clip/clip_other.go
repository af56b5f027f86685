//go:build !darwin && !windows && !linux

package clip

import "fmt"

func newNative() (Bridge, error) {
	return nil, fmt.Errorf("%w: no native clipboard on this platform", ErrUnavailable)
}
