package augment

import (
	"math/rand/v2"

	"github.com/ironsheep/annotated-augment/internal/geometry"
)

// LongestMaxSize rescales so the longer side equals MaxSize, keeping the
// aspect ratio.
type LongestMaxSize struct {
	MaxSize int
}

func (LongestMaxSize) Kind() Kind { return KindLongestMaxSize }
func (LongestMaxSize) Probability() float64 { return 1 }
func (o LongestMaxSize) Params() map[string]any { return map[string]any{"max_size": o.MaxSize} }

func (o LongestMaxSize) Apply(t *Target, _ *rand.Rand) error {
	w, h := t.Size()
	nh, nw := geometry.MaxSizeDims(h, w, o.MaxSize, geometry.Longest)
	t.scaleTo(nw, nh)
	return nil
}

// SmallestMaxSize rescales so the shorter side equals MaxSize, keeping the
// aspect ratio.
type SmallestMaxSize struct {
	MaxSize int
}

func (SmallestMaxSize) Kind() Kind { return KindSmallestMaxSize }
func (SmallestMaxSize) Probability() float64 { return 1 }
func (o SmallestMaxSize) Params() map[string]any { return map[string]any{"max_size": o.MaxSize} }

func (o SmallestMaxSize) Apply(t *Target, _ *rand.Rand) error {
	w, h := t.Size()
	nh, nw := geometry.MaxSizeDims(h, w, o.MaxSize, geometry.Shortest)
	t.scaleTo(nw, nh)
	return nil
}

// Resize rescales to exactly Height x Width.
type Resize struct {
	Height int
	Width  int
}

func (Resize) Kind() Kind { return KindResize }
func (Resize) Probability() float64 { return 1 }
func (o Resize) Params() map[string]any {
	return map[string]any{"height": o.Height, "width": o.Width}
}

func (o Resize) Apply(t *Target, _ *rand.Rand) error {
	t.scaleTo(o.Width, o.Height)
	return nil
}
