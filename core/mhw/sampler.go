package mhw

import (
	"math/rand"

	"github.com/wangkuiyi/walklda/core/row"
)

// Sampler resamples the topic of every token in a document with the
// Metropolis-Hastings-Walker scheme: proposals come in O(1) from the
// word's alias table or from the document's own topic histogram, and a
// Metropolis-Hastings acceptance test corrects them so the stationary
// distribution is the collapsed Gibbs conditional
//
//	P(k | rest) ∝ (n_wk + β)(n_dk + α_k) / (N_k + βV)
//
// Each token takes Config.MHSteps steps, alternating the word and the
// doc proposal; counts move only once per token, after the chain
// settles, so a token's transition is always one decrement of the old
// topic paired with one increment of the new one.
type Sampler struct {
	cfg   *Config
	model Model
	alias *AliasTable
}

func NewSampler(cfg *Config, model Model, alias *AliasTable) *Sampler {
	return &Sampler{cfg: cfg, model: model, alias: alias}
}

func (s *Sampler) alphaAt(k int32) float64 {
	if s.cfg.AsymmetricAlpha {
		return s.alias.AlphaAt(k)
	}
	return s.cfg.Alpha
}

func (s *Sampler) alphaSum() float64 {
	if s.cfg.AsymmetricAlpha {
		return s.alias.AsyAlphaSum()
	}
	return s.cfg.AlphaSum()
}

// proposeDoc draws from q_d(k) ∝ n_dk + α_k in O(1): with probability
// len(doc)/(len(doc)+Σα) the current topic of a uniformly drawn token,
// which is exactly a draw from the histogram, and otherwise a draw
// from the prior.
func (s *Sampler) proposeDoc(doc *Document, rng *rand.Rand) int32 {
	n := doc.Size()
	if r := rng.Float64() * (float64(n) + s.alphaSum()); r < float64(n) {
		return doc.Topics[rng.Intn(n)]
	}
	if s.cfg.AsymmetricAlpha {
		return s.alias.ProposeAsymmetricAlpha(rng)
	}
	return int32(rng.Intn(s.cfg.NumTopics))
}

// accept runs the Metropolis-Hastings test for moving a token of word
// w from chain state cur to proposal t.  The token is still counted at
// old, so the true conditional excludes it with -1 corrections at old;
// proposal densities carry no correction because the alias table and
// the histogram were built with the token in place.
func (s *Sampler) accept(doc *Document, wordRow, summary row.Row,
	old, cur, t int32, wordProposal bool, rng *rand.Rand) bool {

	truth := func(k int32) float64 {
		nwk := float64(wordRow.At(int(k)))
		ndk := float64(doc.TopicHist.At(int(k)))
		nk := float64(summary.At(int(k)))
		if k == old {
			nwk--
			ndk--
			nk--
		}
		return (nwk + s.cfg.Beta) * (ndk + s.alphaAt(k)) /
			(nk + s.cfg.BetaSum())
	}
	proposal := func(k int32) float64 {
		if wordProposal {
			return float64(wordRow.At(int(k))) + s.cfg.Beta
		}
		return float64(doc.TopicHist.At(int(k))) + s.alphaAt(k)
	}

	num := truth(t) * proposal(cur)
	den := truth(cur) * proposal(t)
	if den <= 0 {
		return true
	}
	return rng.Float64()*den < num
}

// SampleDoc resamples every token of doc whose word falls in the
// vocabulary slice [first, last].  It returns the number of tokens
// processed, for throughput reporting.
func (s *Sampler) SampleDoc(doc *Document, first, last int32,
	rng *rand.Rand) int {

	lo, hi := doc.sliceRange(first, last)
	summary := s.model.GetRow(SummaryTable, 0)
	for i := lo; i < hi; i++ {
		w := doc.Words[i]
		old := doc.Topics[i]
		cur := old
		wordRow := s.model.GetRow(WordTopicTable, w)

		for step := 0; step < s.cfg.MHSteps; step++ {
			wordProposal := step%2 == 0
			var t int32
			if wordProposal {
				t = s.alias.Propose(w, rng)
			} else {
				t = s.proposeDoc(doc, rng)
			}
			if t == cur {
				continue
			}
			if s.accept(doc, wordRow, summary, old, cur, t,
				wordProposal, rng) {
				cur = t
			}
		}

		if cur != old {
			doc.SetTopic(i, cur)
			s.model.AddToServer(WordTopicTable, w, old, -1)
			s.model.AddToServer(WordTopicTable, w, cur, 1)
			s.model.AddToServer(SummaryTable, 0, old, -1)
			s.model.AddToServer(SummaryTable, 0, cur, 1)
		}
	}
	return hi - lo
}
