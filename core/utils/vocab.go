package utils

import (
	"bufio"
	"fmt"
	"hash"
	"hash/fnv"
	"io"
	"sort"
	"strings"
)

// Vocabulary maintains the bi-directional mapping between tokens and
// word ids in [0, N).  Tokens are sorted by the ascending order of
// their FNV-1a hashes (ties broken lexically) and a token's rank
// becomes its id.  The hash order shuffles highly-frequent and
// long-tail tokens together, so cutting the id range into vocabulary
// slices yields slices of comparable workload.
type Vocabulary struct {
	Tokens []string
	hasher hash.Hash64
	ids    map[string]int
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		Tokens: make([]string, 0),
		hasher: fnv.New64a(),
	}
}

// Load reads one token per line, taking only the first column.
func (v *Vocabulary) Load(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		fs := strings.Fields(scanner.Text())
		if len(fs) > 0 {
			v.Tokens = append(v.Tokens, fs[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	sort.Sort(v)
	v.buildIdMap()
	return nil
}

func (v *Vocabulary) buildIdMap() {
	v.ids = make(map[string]int)
	for i := range v.Tokens {
		v.ids[v.Tokens[i]] = i
	}
}

func (v *Vocabulary) Len() int {
	return len(v.Tokens)
}

func (v *Vocabulary) fingerprint(s string) uint64 {
	v.hasher.Write([]byte(s))
	sum := v.hasher.Sum64()
	v.hasher.Reset()
	return sum
}

func (v *Vocabulary) Less(i, j int) bool {
	l, r := v.fingerprint(v.Tokens[i]), v.fingerprint(v.Tokens[j])
	if l == r {
		return v.Tokens[i] < v.Tokens[j]
	}
	return l < r
}

func (v *Vocabulary) Swap(i, j int) {
	v.Tokens[i], v.Tokens[j] = v.Tokens[j], v.Tokens[i]
}

func (v *Vocabulary) Token(id int32) string {
	if int(id) < 0 || int(id) >= len(v.Tokens) {
		panic(fmt.Sprintf("id=%d out of range [0, %d)", id, len(v.Tokens)))
	}
	return v.Tokens[id]
}

// Id returns the id of token, or a negative value for tokens not in
// the vocabulary.
func (v *Vocabulary) Id(token string) int32 {
	if v.ids == nil {
		v.buildIdMap()
	}
	if id, ok := v.ids[token]; ok {
		return int32(id)
	}
	return int32(-1)
}
