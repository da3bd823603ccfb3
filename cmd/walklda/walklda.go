// walklda is a multi-threading command line LDA trainer built on the
// Metropolis-Hastings-Walker sampler.
// Usage:
/*
  $GOPATH/bin/walklda \
    -vocab=./testdata/vocab \
    -corpus=./testdata/corpus \
    -topics=10 \
    -iterations=100 \
    -dump_dir=/tmp/walklda
*/

package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"runtime"

	"github.com/wangkuiyi/parallel"
	"github.com/wangkuiyi/walklda/core/mhw"
	"github.com/wangkuiyi/walklda/core/utils"
	"github.com/wangkuiyi/walklda/ps"
)

func main() {
	flagAddr := flag.String("addr", ":6060", "HTTP status page address")
	flagVocab := flag.String("vocab", "./testdata/vocab", "Vocabulary file")
	flagCorpus := flag.String("corpus", "./testdata/corpus", "Corpus file")
	flagMinDocLen := flag.Int("minlen", 1, "minimum document length")
	flagMaxDocLen := flag.Int("maxlen", -1, "maximum document length")
	flagTopics := flag.Int("topics", 10, "Number of topics to be learned")
	flagIter := flag.Int("iterations", 100, "Training iterations")
	flagAlpha := flag.Float64("alpha", 0.01, "Topic prior")
	flagBeta := flag.Float64("beta", 0.01, "Word prior")
	flagAsymAlpha := flag.Bool("asym_alpha", false,
		"Derive per-topic alphas from the summary row")
	flagMHSteps := flag.Int("mh_steps", 2, "Metropolis-Hastings steps per token")
	flagBlocks := flag.Int("blocks", 1, "Number of data blocks")
	flagSlices := flag.Int("slices", 1, "Number of vocabulary slices per block")
	flagTrainers := flag.Int("trainers", 2, "Number of trainer threads")
	flagEvalLag := flag.Int("eval_lag", 2, "Evaluation lag, 0 disables")
	flagDumpLag := flag.Int("dump_lag", 0, "Word-topic dump lag, 0 disables")
	flagDumpDir := flag.String("dump_dir", "/tmp/walklda", "Dump directory")
	flagCheckInit := flag.Bool("check_init", false,
		"Verify initial topic assignments on the first iteration")
	flagWarmStart := flag.Bool("warm_start", false,
		"Keep topic assignments loaded with the corpus")
	flagModel := flag.String("model", "", "The model checkpoint output")
	flagGoMaxProcs := flag.Int("GOMAXPROCS", -1, "GOMAXPROCS")
	flag.Parse()

	is := utils.EnableExpvar(*flagAddr)
	log.Printf("Initialization start at %s", is.Start().StartTime)

	// A hack on setting the MAXPROCS.
	if *flagGoMaxProcs < 0 {
		runtime.GOMAXPROCS(runtime.NumCPU())
	} else {
		runtime.GOMAXPROCS(*flagGoMaxProcs)
	}
	log.Println("Running with MAXPROCS ", runtime.GOMAXPROCS(-1))

	vocab := utils.LoadVocabOrDie(*flagVocab)
	rng := rand.New(rand.NewSource(-1))
	corpus := utils.LoadCorpusOrDie(*flagCorpus, vocab, *flagTopics,
		*flagMinDocLen, *flagMaxDocLen, rng)

	cfg := &mhw.Config{
		NumTopics:       *flagTopics,
		NumVocabs:       vocab.Len(),
		Alpha:           *flagAlpha,
		Beta:            *flagBeta,
		AsymmetricAlpha: *flagAsymAlpha,
		NumIterations:   *flagIter,
		NumTrainers:     *flagTrainers,
		MHSteps:         *flagMHSteps,
		EvalLag:         *flagEvalLag,
		DumpLag:         *flagDumpLag,
		DumpDir:         *flagDumpDir,
		WarmStart:       *flagWarmStart,
		CheckInit:       *flagCheckInit,
	}
	if e := cfg.Validate(); e != nil {
		log.Fatalf("Invalid configuration: %v", e)
	}
	log.Println("Configuration: ", cfg)

	blocks := utils.MakeBlocks(corpus, *flagBlocks)
	meta := mhw.NewMeta(cfg)
	meta.Init(blocks, *flagSlices)

	store := ps.NewStore(cfg.NumTopics, cfg.NumVocabs)
	store.ConfigureRows(meta.TfAll(), mhw.LoadFactor)
	initializeTopics(blocks, cfg, store)
	store.SetStrict(true)

	alias := mhw.NewAliasTable(cfg)
	barrier := mhw.NewBarrier(cfg.NumTrainers)
	ctx := mhw.NewContext()
	trainers := make([]*mhw.Trainer, cfg.NumTrainers)
	for i := range trainers {
		trainers[i] = mhw.NewTrainer(i, cfg, alias, barrier, meta, store, ctx)
	}
	loader := mhw.NewParamLoader(store)

	log.Printf("Initialization done in %s", is.End(0.0).Duration)

	sigs := make(chan os.Signal, 1)
	exit := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		for sig := range sigs {
			log.Printf("Caught signal, will checkpoint and exit ...")
			exit <- sig
		}
	}()

Iterations:
	for iter := 0; iter < cfg.NumIterations; iter++ {
		select {
		case <-exit:
			log.Printf("Early terminated by signal.")
			break Iterations
		default:
		}

		log.Printf("Iteration %04d start at %s", iter, is.Start().StartTime)

		for bi, block := range blocks {
			for slice := 0; slice < block.Meta().NumSlice(); slice++ {
				b := &mhw.IterationBlock{
					Data:      block,
					Iteration: iter,
					Block:     bi,
					Slice:     slice,
				}
				store.ResetRequests()
				loader.ParseAndRequest(b)
				parallel.For(0, cfg.NumTrainers, 1, func(i int) error {
					trainers[i].TrainIteration(b)
					return nil
				})
			}
		}

		doc, word := ctx.TakeLastLLH()
		if cfg.EvalLag > 0 && iter%cfg.EvalLag == 0 {
			log.Printf("Iteration %04d log likelihood %e", iter, doc+word)
		}
		log.Printf("Iteration %04d done in %s", iter, is.End(doc+word).Duration)
	}

	if *flagModel != "" {
		if e := store.Save(*flagModel); e != nil {
			log.Fatalf("Saving model to %s: %v", *flagModel, e)
		}
	}
	for bi, block := range blocks {
		if e := utils.DumpDocTopic(block, bi, cfg.DumpDir); e != nil {
			log.Fatalf("Dumping doc-topic of block %d: %v", bi, e)
		}
	}
}

// initializeTopics assigns every token of a document the topic
// (maximum word id of the document) mod NumTopics, unless warm start
// keeps the topics loaded with the corpus, and pushes the resulting
// word-topic and summary counts to the parameter server.
func initializeTopics(blocks []*mhw.DataBlock, cfg *mhw.Config, store *ps.Store) {
	for _, b := range blocks {
		for i := 0; i < b.Size(); i++ {
			doc := b.GetOneDoc(i)
			if doc.Size() == 0 {
				continue
			}
			if !cfg.WarmStart {
				// Words are sorted, so the last one is the maximum.
				topic := doc.Word(doc.Size()-1) % int32(cfg.NumTopics)
				for j := 0; j < doc.Size(); j++ {
					doc.SetTopic(j, topic)
				}
			}
			for j := 0; j < doc.Size(); j++ {
				store.AddToServer(mhw.WordTopicTable, doc.Word(j), doc.Topic(j), 1)
				store.AddToServer(mhw.SummaryTable, 0, doc.Topic(j), 1)
			}
		}
	}
}
