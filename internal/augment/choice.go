package augment

import (
	"fmt"
	"math/rand/v2"
)

// OneOrOther runs First with probability P and Second otherwise. The chosen
// branch always runs, whatever its own probability.
type OneOrOther struct {
	First  Transform
	Second Transform
	P      float64
}

func (OneOrOther) Kind() Kind { return KindOneOrOther }

// Probability is 1: the operation itself always runs, P only picks the branch.
func (OneOrOther) Probability() float64 { return 1 }

func (o OneOrOther) Params() map[string]any {
	return map[string]any{"first": kindOf(o.First), "second": kindOf(o.Second), "p": o.P}
}

func kindOf(op Transform) string {
	if op == nil {
		return ""
	}
	return string(op.Kind())
}

// Children returns both branches, first one first.
func (o OneOrOther) Children() []Transform {
	return []Transform{o.First, o.Second}
}

func (o OneOrOther) Apply(t *Target, rng *rand.Rand) error {
	if o.First == nil || o.Second == nil {
		return fmt.Errorf("one_or_other needs two branches")
	}
	chosen := o.Second
	if rng.Float64() < o.P {
		chosen = o.First
	}
	t.record(chosen)
	return chosen.Apply(t, rng)
}
