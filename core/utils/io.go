package utils

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path"
	"strconv"
	"strings"

	cmprs "github.com/wangkuiyi/compress_io"
	file "github.com/wangkuiyi/file"
	"github.com/wangkuiyi/walklda/core/mhw"
	"github.com/wangkuiyi/walklda/core/row"
)

func LoadVocabOrDie(filename string) *Vocabulary {
	log.Printf("Loading vocab %s ... ", filename)

	f, e := os.Open(filename)
	r := cmprs.NewReader(f, e, path.Ext(filename))
	if r == nil {
		log.Fatalf("Cannot open vocab file %s: %v", filename, e)
	}

	defer r.Close()
	vocab := NewVocabulary()
	if e := vocab.Load(r); e != nil {
		log.Fatalf("Failed loading vocab file %s: %v", filename, e)
	}

	log.Println("Done loading vocabulary.")
	return vocab
}

// LoadCorpusOrDie reads one whitespace-tokenized document per line,
// mapping tokens through vocab and assigning every token a random
// initial topic.  Documents shorter than minLen or longer than maxLen
// are skipped when those bounds are positive.
func LoadCorpusOrDie(filename string, vocab *Vocabulary, topics int,
	minLen, maxLen int, rng *rand.Rand) []*mhw.Document {

	log.Printf("Loading corpus %s ... ", filename)

	f, e := os.Open(filename)
	r := cmprs.NewReader(f, e, path.Ext(filename))
	if r == nil {
		log.Fatalf("Cannot open corpus file %s: %v", filename, e)
	}

	defer r.Close()
	corpus := make([]*mhw.Document, 0)
	scanned := 0
	s := bufio.NewScanner(r)
	for s.Scan() {
		scanned++
		tokens := strings.Fields(s.Text())
		words := make([]int32, 0, len(tokens))
		ts := make([]int32, 0, len(tokens))
		for _, tok := range tokens {
			if id := vocab.Id(tok); id >= 0 {
				words = append(words, id)
				ts = append(ts, int32(rng.Intn(topics)))
			}
		}
		d := mhw.NewDocument(words, ts)
		if ((minLen > 0 && d.Size() >= minLen) || minLen <= 0) &&
			((maxLen > 0 && d.Size() <= maxLen) || maxLen <= 0) {
			corpus = append(corpus, d)
		}
	}
	if e := s.Err(); e != nil {
		log.Fatal("Error reading ", filename, ": ", e)
	}

	if len(corpus) == 0 {
		log.Fatal("corpus contains no valid document!")
	}
	log.Printf("Done loading corpus: %d out of %d.", len(corpus), scanned)
	return corpus
}

// MakeBlocks deals the corpus round-robin into numBlocks data blocks.
func MakeBlocks(corpus []*mhw.Document, numBlocks int) []*mhw.DataBlock {
	if numBlocks <= 0 || numBlocks > len(corpus) {
		numBlocks = 1
	}
	docs := make([][]*mhw.Document, numBlocks)
	for i, d := range corpus {
		docs[i%numBlocks] = append(docs[i%numBlocks], d)
	}
	blocks := make([]*mhw.DataBlock, numBlocks)
	for i := range blocks {
		blocks[i] = mhw.NewDataBlock(docs[i])
	}
	return blocks
}

// DumpDocTopic writes one block's document topic histograms as
// plaintext, one line per document: <docIndex> <topic>:<count> ...
func DumpDocTopic(block *mhw.DataBlock, blockID int, dir string) error {
	name := path.Join(dir, fmt.Sprintf("doc_topic.%d", blockID))
	f, e := file.Create(name)
	if e != nil {
		return fmt.Errorf("Cannot create %s: %v", name, e)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()

	counts := row.NewSparse()
	for i := 0; i < block.Size(); i++ {
		block.GetOneDoc(i).GetDocTopicVector(counts)
		fmt.Fprintf(w, "%d", i)
		cursor := row.NewCursor(counts)
		for cursor.HasNext() {
			fmt.Fprintf(w, " %d:%d", cursor.Key(), cursor.Value())
			cursor.Next()
		}
		fmt.Fprintln(w)
	}
	return nil
}

// LoadWordTopicDump reads word-topic dump files of the format written
// by Trainer.Dump and merges them into per-word sparse rows.
func LoadWordTopicDump(numVocabs int, filenames ...string) ([]row.Sparse,
	error) {

	rows := make([]row.Sparse, numVocabs)
	for _, filename := range filenames {
		f, e := file.Open(filename)
		if e != nil {
			return nil, fmt.Errorf("Cannot open %s: %v", filename, e)
		}
		if e := readWordTopicDump(f, rows); e != nil {
			f.Close()
			return nil, fmt.Errorf("Reading %s: %v", filename, e)
		}
		f.Close()
	}
	return rows, nil
}

func readWordTopicDump(r io.Reader, rows []row.Sparse) error {
	s := bufio.NewScanner(r)
	for s.Scan() {
		fs := strings.Fields(s.Text())
		if len(fs) == 0 {
			continue
		}
		word, e := strconv.Atoi(fs[0])
		if e != nil || word < 0 || word >= len(rows) {
			return fmt.Errorf("bad word id %q", fs[0])
		}
		if rows[word] == nil {
			rows[word] = row.NewSparse()
		}
		for _, field := range fs[1:] {
			var topic, count int
			if _, e := fmt.Sscanf(field, "%d:%d", &topic, &count); e != nil {
				return fmt.Errorf("bad field %q of word %d: %v",
					field, word, e)
			}
			rows[word].Inc(topic, count)
		}
	}
	return s.Err()
}
