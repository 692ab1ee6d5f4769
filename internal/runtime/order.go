package runtime

import (
	"math/rand/v2"
	"slices"

	"github.com/aretw0/grove/pkg/domain"
)

// orderer decides the run order of a context's children.
type orderer struct {
	rng *rand.Rand
	def bool
	// shuffled is set once a permutation has been drawn.
	shuffled bool
}

func newOrderer(seed uint64, def bool) *orderer {
	return &orderer{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		def: def,
	}
}

// children returns n's children in run order: a fresh permutation when n is
// effectively random, declaration order otherwise.
func (o *orderer) children(n *domain.Node) []*domain.Node {
	kids := slices.Clone(n.Children)
	if n.EffectiveRandom(o.def) && len(kids) > 1 {
		o.shuffled = true
		o.rng.Shuffle(len(kids), func(i, j int) {
			kids[i], kids[j] = kids[j], kids[i]
		})
	}
	return kids
}
