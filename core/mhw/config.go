package mhw

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Words whose term frequency exceeds NumTopics/loadFactor get dense
// word-topic rows and dense alias regions; the rest stay sparse.
const LoadFactor = 2

// Config holds the already-parsed training parameters.  Command line
// parsing lives in cmd/walklda; the core only sees validated values.
type Config struct {
	// Model shape and priors.
	NumTopics int
	NumVocabs int
	Alpha     float64 // symmetric topic prior
	Beta      float64 // symmetric word prior

	// AsymmetricAlpha, when set, replaces the symmetric topic prior
	// by per-topic alphas derived from the summary row once per
	// slice, keeping the total prior mass Alpha*NumTopics.
	AsymmetricAlpha bool

	// Schedule.
	NumIterations int
	NumTrainers   int

	// MHSteps is the number of Metropolis-Hastings steps per token.
	// Steps alternate between the word proposal and the doc proposal.
	MHSteps int

	// EvalLag and DumpLag control how often (in iterations) the
	// trainers compute log-likelihoods and dump the word-topic rows.
	// Zero disables the corresponding pass.
	EvalLag int
	DumpLag int

	// DumpDir receives word-topic dump files.
	DumpDir string

	// WarmStart keeps topic assignments loaded with the corpus
	// instead of re-initializing them.  CheckInit enables the debug
	// self-check of initial topics on the first iteration.
	WarmStart bool
	CheckInit bool
}

func (c *Config) Validate() error {
	if c.NumTopics < 2 {
		return fmt.Errorf("NumTopics (%d) must be at least 2", c.NumTopics)
	}
	if c.NumVocabs < 2 {
		return fmt.Errorf("NumVocabs (%d) must be at least 2", c.NumVocabs)
	}
	if c.Alpha <= 0 {
		return fmt.Errorf("Alpha (%f) must be positive", c.Alpha)
	}
	if c.Beta <= 0 {
		return fmt.Errorf("Beta (%f) must be positive", c.Beta)
	}
	if c.NumIterations <= 0 {
		return errors.New("NumIterations must be positive")
	}
	if c.NumTrainers <= 0 {
		return errors.New("NumTrainers must be positive")
	}
	if c.MHSteps <= 0 {
		return errors.New("MHSteps must be positive")
	}
	if c.EvalLag < 0 || c.DumpLag < 0 {
		return errors.New("EvalLag and DumpLag must not be negative")
	}
	return nil
}

// AlphaSum is the total topic prior mass, preserved by the asymmetric
// alpha estimation.
func (c *Config) AlphaSum() float64 {
	return c.Alpha * float64(c.NumTopics)
}

// BetaSum is Beta times the vocabulary size.
func (c *Config) BetaSum() float64 {
	return c.Beta * float64(c.NumVocabs)
}

// String prints the effective configuration, for logging at startup.
func (c *Config) String() string {
	if b, e := json.MarshalIndent(c, " ", "  "); e == nil {
		return string(b)
	}
	return ""
}
