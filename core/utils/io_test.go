package utils

import (
	"io/ioutil"
	"log"
	"math/rand"
	"os"
	"path"
	"reflect"
	"strings"
	"testing"

	cmprs "github.com/wangkuiyi/compress_io"
	file "github.com/wangkuiyi/file"
	"github.com/wangkuiyi/file/inmemfs"
	"github.com/wangkuiyi/walklda/core/mhw"
	"github.com/wangkuiyi/walklda/core/row"
)

const testingVocabContent = "apple\norange\ncat\ntiger\n"

func createTestingVocab() (*Vocabulary, error) {
	v := NewVocabulary()
	e := v.Load(strings.NewReader(testingVocabContent))
	return v, e
}

func TestLoadVocabOrDie(t *testing.T) {
	dir, e := ioutil.TempDir("", "")
	if e != nil {
		t.Fatalf("Cannot create temp dir: %v", e)
	}
	defer os.RemoveAll(dir)

	v, e := createTestingVocab()
	if e != nil {
		t.Fatalf("createTestingVocab: %v", e)
	}

	gzFile := createTempFile(dir, "vocab", ".gz", testingVocabContent)
	if len(gzFile) == 0 {
		t.Fatalf("createTempFile failed")
	}
	if v2 := LoadVocabOrDie(gzFile); !reflect.DeepEqual(v.Tokens, v2.Tokens) {
		t.Errorf("Expecting\n%v\ngot\n%v\n", v.Tokens, v2.Tokens)
	}

	plainFile := createTempFile(dir, "vocab", "", testingVocabContent)
	if len(plainFile) == 0 {
		t.Fatalf("createTempFile failed")
	}
	if v2 := LoadVocabOrDie(plainFile); !reflect.DeepEqual(v.Tokens, v2.Tokens) {
		t.Errorf("Expecting\n%v\ngot\n%v\n", v.Tokens, v2.Tokens)
	}
}

func TestLoadCorpusOrDie(t *testing.T) {
	dir, e := ioutil.TempDir("", "")
	if e != nil {
		t.Fatalf("Cannot create temp dir: %v", e)
	}
	defer os.RemoveAll(dir)

	v, e := createTestingVocab()
	if e != nil {
		t.Fatalf("createTestingVocab: %v", e)
	}

	content := "apple unknown orange\ncat\ncat tiger apple orange\n"
	plainFile := createTempFile(dir, "corpus", "", content)
	if len(plainFile) == 0 {
		t.Fatalf("createTempFile failed")
	}

	rng := rand.New(rand.NewSource(1))
	c := LoadCorpusOrDie(plainFile, v, 2, 1, 50, rng)
	if len(c) != 3 {
		t.Fatalf("Expecting 3 documents, got %d", len(c))
	}
	// Unknown tokens are dropped and the rest map through the vocab.
	if c[0].Size() != 2 {
		t.Errorf("Expecting 2 tokens in doc 0, got %d", c[0].Size())
	}
	for _, d := range c {
		for i := 0; i < d.Size(); i++ {
			if w := d.Word(i); w < 0 || int(w) >= v.Len() {
				t.Errorf("Word id %d out of range [0, %d)", w, v.Len())
			}
			if k := d.Topic(i); k < 0 || k >= 2 {
				t.Errorf("Initial topic %d out of range [0, 2)", k)
			}
		}
	}

	// Length filters drop the one-token and the four-token documents.
	c = LoadCorpusOrDie(plainFile, v, 2, 2, 3, rng)
	if len(c) != 1 || c[0].Size() != 2 {
		t.Errorf("Expecting the 2-token document only, got %d documents",
			len(c))
	}
}

func TestMakeBlocks(t *testing.T) {
	corpus := []*mhw.Document{
		mhw.NewDocument([]int32{0}, []int32{0}),
		mhw.NewDocument([]int32{1}, []int32{0}),
		mhw.NewDocument([]int32{2}, []int32{0}),
	}

	blocks := MakeBlocks(corpus, 2)
	if len(blocks) != 2 || blocks[0].Size() != 2 || blocks[1].Size() != 1 {
		t.Errorf("Expecting blocks of sizes 2 and 1, got %d blocks", len(blocks))
	}
	if blocks[0].GetOneDoc(1) != corpus[2] {
		t.Errorf("Expecting round-robin assignment of documents")
	}

	// More blocks than documents clamp to one block.
	blocks = MakeBlocks(corpus, 10)
	if len(blocks) != 1 || blocks[0].Size() != 3 {
		t.Errorf("Expecting one block of 3 documents, got %d blocks",
			len(blocks))
	}
}

func TestDumpDocTopic(t *testing.T) {
	inmemfs.Format()

	block := mhw.NewDataBlock([]*mhw.Document{
		mhw.NewDocument([]int32{0, 1, 2}, []int32{1, 1, 0}),
		mhw.NewDocument(nil, nil),
	})
	if e := DumpDocTopic(block, 7, "inmem:/dump"); e != nil {
		t.Fatalf("DumpDocTopic: %v", e)
	}

	f, e := file.Open("inmem:/dump/doc_topic.7")
	if e != nil {
		t.Fatalf("Open: %v", e)
	}
	b, e := ioutil.ReadAll(f)
	if e != nil {
		t.Fatalf("ReadAll: %v", e)
	}
	want := "0 0:1 1:2\n1\n"
	if string(b) != want {
		t.Errorf("Expecting %q, got %q", want, string(b))
	}
}

func TestLoadWordTopicDump(t *testing.T) {
	inmemfs.Format()

	for i, content := range []string{
		"0 1:2 3:1\n2 0:5\n",
		"0 1:1\n",
	} {
		f, e := file.Create("inmem:" + path.Join("/dump", modelName(i)))
		if e != nil {
			t.Fatalf("Create: %v", e)
		}
		if _, e := f.Write([]byte(content)); e != nil {
			t.Fatalf("Write: %v", e)
		}
		f.Close()
	}

	rows, e := LoadWordTopicDump(4,
		"inmem:/dump/"+modelName(0), "inmem:/dump/"+modelName(1))
	if e != nil {
		t.Fatalf("LoadWordTopicDump: %v", e)
	}

	if !rows[0].Equal(row.Sparse{1: 3, 3: 1}) {
		t.Errorf("Expecting merged row {1:3 3:1}, got %v", rows[0])
	}
	if !rows[2].Equal(row.Sparse{0: 5}) {
		t.Errorf("Expecting row {0:5}, got %v", rows[2])
	}
	if rows[1] != nil || rows[3] != nil {
		t.Errorf("Expecting nil rows for undumped words")
	}

	if _, e := LoadWordTopicDump(4, "inmem:/dump/missing"); e == nil {
		t.Errorf("Expecting an error on a missing dump file")
	}
}

func modelName(i int) string {
	return "model.2.0." + string(rune('0'+i))
}

func createTempFile(dir, name, ext, content string) string {
	filename := path.Join(dir, name+ext)
	f, e := os.Create(filename)
	w := cmprs.NewWriter(f, e, path.Ext(filename))
	if w == nil {
		log.Printf("NewCompressWriter failed")
		return ""
	}
	defer w.Close()

	if _, e := w.Write([]byte(content)); e != nil {
		log.Printf("Failed writing to temp file %s: %v", filename, e)
	}

	return filename
}
