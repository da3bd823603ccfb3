package mhw

import (
	"math"

	"github.com/wangkuiyi/walklda/core/row"
)

// Log-likelihood terms of the collapsed LDA posterior.  The total
// model log-likelihood decomposes into a per-document part, a per-word
// part, and a per-topic normalization, so trainers can compute partial
// sums over their document and word partitions independently and
// aggregate them under the evaluation lock.

// DocLLH is the document part:
//
//	Σ_k [lnΓ(α_k + n_dk) − lnΓ(α_k)] + lnΓ(Σα) − lnΓ(Σα + |d|)
//
// The sum runs over the document's non-zero topics only.
func DocLLH(doc *Document, alphaAt func(int32) float64,
	alphaSum float64) float64 {

	if doc.Size() == 0 {
		return 0
	}
	var llh float64
	doc.TopicHist.ForEach(func(topic int, count int64) error {
		alpha := alphaAt(int32(topic))
		a, _ := math.Lgamma(alpha + float64(count))
		b, _ := math.Lgamma(alpha)
		llh += a - b
		return nil
	})
	a, _ := math.Lgamma(alphaSum)
	b, _ := math.Lgamma(alphaSum + float64(doc.Size()))
	return llh + a - b
}

// WordLLH is one word's part: Σ_k nonzero [lnΓ(β + n_wk) − lnΓ(β)].
func WordLLH(wordRow row.Row, beta float64) float64 {
	var llh float64
	lgBeta, _ := math.Lgamma(beta)
	wordRow.ForEach(func(_ int, count int64) error {
		if count > 0 {
			a, _ := math.Lgamma(beta + float64(count))
			llh += a - lgBeta
		}
		return nil
	})
	return llh
}

// WordLLHNorm is the per-topic normalization of the word part:
// Σ_k [lnΓ(βV) − lnΓ(βV + N_k)].  It is computed once per evaluation
// pass, by the leader trainer.
func WordLLHNorm(summary row.Row, betaSum float64) float64 {
	var llh float64
	lgBetaSum, _ := math.Lgamma(betaSum)
	summary.ForEach(func(_ int, count int64) error {
		a, _ := math.Lgamma(betaSum + float64(count))
		llh += lgBetaSum - a
		return nil
	})
	return llh
}
