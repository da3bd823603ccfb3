package mhw

import (
	"bufio"
	"fmt"
	"log"
	"math/rand"
	"path"
	"sync"
	"time"

	file "github.com/wangkuiyi/file"
	"github.com/wangkuiyi/walklda/core/row"
)

// Context is the state all trainers of a process share: the evaluation
// accumulators, guarded by a lock because every trainer adds its
// partial sum before the barrier-elected reporter logs and resets the
// total.
type Context struct {
	mu       sync.Mutex
	docLLH   float64
	wordLLH  float64
	lastDoc  float64
	lastWord float64
}

func NewContext() *Context {
	return &Context{}
}

// TakeLastLLH returns the doc and word log likelihoods accumulated
// since the previous call, and zeroes them.  The driver calls it once
// per evaluated iteration, after all blocks and slices are done.
func (c *Context) TakeLastLLH() (doc, word float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, word = c.lastDoc, c.lastWord
	c.lastDoc, c.lastWord = 0, 0
	return doc, word
}

// Trainer is the per-goroutine orchestrator.  All trainers of a
// process share one alias table, one barrier, one Meta, one model view
// and one Context; each owns its id, its sampler, its build scratch
// and its random source.  The integer id partitions both the
// vocabulary during alias builds and the documents during sampling:
// trainer i takes indices {i, i+T, i+2T, ...}.
type Trainer struct {
	id       int
	trainers int
	cfg      *Config
	alias    *AliasTable
	barrier  *Barrier
	meta     *Meta
	model    Model
	ctx      *Context
	sampler  *Sampler
	scratch  *BuildScratch
	rng      *rand.Rand
}

func NewTrainer(id int, cfg *Config, alias *AliasTable, barrier *Barrier,
	meta *Meta, model Model, ctx *Context) *Trainer {

	return &Trainer{
		id:       id,
		trainers: cfg.NumTrainers,
		cfg:      cfg,
		alias:    alias,
		barrier:  barrier,
		meta:     meta,
		model:    model,
		ctx:      ctx,
		sampler:  NewSampler(cfg, model, alias),
		scratch:  NewBuildScratch(),
		rng:      rand.New(rand.NewSource(int64(id) + 1)),
	}
}

// TrainIteration runs the phases of one (iteration, block, slice):
// alias build, optional asymmetric-alpha init, sampling, optional
// evaluation and dump, and, on the final iteration, cleanup.  All
// trainers of the process must call it with the same IterationBlock;
// the shared barrier separates the phases.
func (t *Trainer) TrainIteration(b *IterationBlock) {
	start := time.Now()
	vocab := b.Data.Meta()
	first := vocab.FirstWord(b.Slice)
	last := vocab.LastWord(b.Slice)

	if t.id == 0 {
		log.Printf("Iter = %d, Block = %d, Slice = %d",
			b.Iteration, b.Block, b.Slice)
		t.alias.Init(t.meta.AliasIndex(b.Block, b.Slice))
	}
	t.barrier.Wait()

	words := vocab.Words(b.Slice)
	for i := t.id; i < len(words); i += t.trainers {
		if e := t.alias.Build(words[i], t.model, t.scratch); e != nil {
			log.Fatalf("Building alias table: %v", e)
		}
	}
	if t.id == 0 {
		if e := t.alias.Build(BetaWord, t.model, t.scratch); e != nil {
			log.Fatalf("Building beta alias table: %v", e)
		}
		summary := t.model.GetRow(SummaryTable, 0)
		nonZero := 0
		for k := 0; k < t.cfg.NumTopics; k++ {
			if summary.At(k) > 0 {
				nonZero++
			}
		}
		log.Printf("non_zero_topic = %d", nonZero)

		if t.cfg.AsymmetricAlpha {
			t.alias.InitAsymmetricAlpha(t.model)
		}
	}
	t.barrier.Wait()

	if t.id == 0 {
		log.Printf("Alias time used: %.2f s", time.Since(start).Seconds())
	}
	start = time.Now()

	numToken := 0
	for docID := t.id; docID < b.Data.Size(); docID += t.trainers {
		doc := b.Data.GetOneDoc(docID)
		if b.Iteration == 0 && b.Slice == 0 && t.cfg.CheckInit {
			t.checkInitialTopics(docID, doc)
		}
		numToken += t.sampler.SampleDoc(doc, first, last, t.rng)
	}
	if t.id == 0 {
		elapsed := time.Since(start).Seconds()
		log.Printf("Training time used: %.2f s", elapsed)
		log.Printf("Sampling throughput: %.6f (tokens/thread/sec)",
			float64(numToken)/elapsed)
	}

	if t.cfg.EvalLag > 0 && b.Iteration%t.cfg.EvalLag == 0 {
		start = time.Now()
		t.Evaluate(b)
		if t.id == 0 {
			log.Printf("Evaluation time used: %.2f s",
				time.Since(start).Seconds())
		}
	}
	if t.cfg.DumpLag > 0 && b.Iteration > 0 &&
		b.Iteration%t.cfg.DumpLag == 0 {
		t.Dump(b.Iteration, b)
	}

	if b.Iteration == t.cfg.NumIterations-1 {
		t.scratch.Release()
		if t.barrier.Wait() {
			t.alias.Clear()
		}
	}
}

// checkInitialTopics verifies that all tokens of a document still
// carry the same initial topic on the first iteration.  A mismatch
// means the corpus or the initialization is corrupted, which is not
// retriable.
func (t *Trainer) checkInitialTopics(docID int, doc *Document) {
	if doc.Size() == 0 {
		return
	}
	docTopic := doc.Topic(0)
	for i := 1; i < doc.Size(); i++ {
		if doc.Topic(i) != docTopic {
			log.Fatalf("doc %d: token %d (word %d) has topic %d, "+
				"expecting the doc topic %d",
				docID, i, doc.Word(i), doc.Topic(i), docTopic)
		}
	}
}

// Evaluate computes this trainer's partial log-likelihoods and folds
// them into the shared accumulators.  The document part depends only
// on doc-topic histograms, so it is computed when slice 0 is loaded;
// the word part only on word-topic rows, so when block 0 is loaded.
// The barrier's elected caller logs each aggregate and resets it.
func (t *Trainer) Evaluate(b *IterationBlock) {
	alphaAt := t.sampler.alphaAt
	alphaSum := t.sampler.alphaSum()

	var threadDoc float64
	if b.Slice == 0 {
		for docID := t.id; docID < b.Data.Size(); docID += t.trainers {
			threadDoc += DocLLH(b.Data.GetOneDoc(docID), alphaAt, alphaSum)
		}
	}
	t.ctx.mu.Lock()
	t.ctx.docLLH += threadDoc
	t.ctx.mu.Unlock()
	if b.Slice == 0 && t.barrier.Wait() {
		t.ctx.mu.Lock()
		log.Printf("iter=%d, block=%d, doc likelihood: %e",
			b.Iteration, b.Block, t.ctx.docLLH)
		t.ctx.lastDoc += t.ctx.docLLH
		t.ctx.docLLH = 0
		t.ctx.mu.Unlock()
	}

	var threadWord float64
	if b.Block == 0 {
		words := b.Data.Meta().Words(b.Slice)
		for i := t.id; i < len(words); i += t.trainers {
			threadWord += WordLLH(
				t.model.GetRow(WordTopicTable, words[i]), t.cfg.Beta)
		}
	}
	t.ctx.mu.Lock()
	t.ctx.wordLLH += threadWord
	t.ctx.mu.Unlock()
	if b.Block == 0 && t.barrier.Wait() {
		t.ctx.mu.Lock()
		log.Printf("iter=%d, slice=%d, word likelihood: %e",
			b.Iteration, b.Slice, t.ctx.wordLLH)
		t.ctx.lastWord += t.ctx.wordLLH
		t.ctx.wordLLH = 0
		t.ctx.mu.Unlock()
	}

	if t.id == 0 && b.Block == 0 {
		log.Printf("iter=%d, slice=%d, normalized likelihood: %e",
			b.Iteration, b.Slice,
			WordLLHNorm(t.model.GetRow(SummaryTable, 0), t.cfg.BetaSum()))
	}
	t.barrier.Wait()
}

// Dump writes this trainer's partition of the slice's word-topic rows
// as plaintext, one line per word: <word> <topic>:<count> ...
func (t *Trainer) Dump(iter int, b *IterationBlock) {
	name := path.Join(t.cfg.DumpDir,
		fmt.Sprintf("model.%d.%d.%d", iter, b.Slice, t.id))
	f, e := file.Create(name)
	if e != nil {
		log.Fatalf("Cannot create dump file %s: %v", name, e)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()

	words := b.Data.Meta().Words(b.Slice)
	for i := t.id; i < len(words); i += t.trainers {
		word := words[i]
		fmt.Fprintf(w, "%d", word)
		cursor := row.NewCursor(t.model.GetRow(WordTopicTable, word))
		for cursor.HasNext() {
			fmt.Fprintf(w, " %d:%d", cursor.Key(), cursor.Value())
			cursor.Next()
		}
		fmt.Fprintln(w)
	}
}
