package utils

import (
	"html/template"
	"log"
	"runtime"
	"sort"

	"github.com/wangkuiyi/parallel"
	"github.com/wangkuiyi/walklda/core/row"
)

// DescribeTopics inverts per-word topic counts into per-topic word
// lists, sorted by count in descending order and truncated to
// maxWordsPerTopic.
func DescribeTopics(rows []row.Sparse, v *Vocabulary, numTopics,
	maxWordsPerTopic int) []*TopicDesc {

	log.Printf("Generating topic descriptions ... ")
	descs := make([]*TopicDesc, numTopics)

	parallel.ForN(0, numTopics, 1, 2*runtime.NumCPU(), func(topic int) {
		desc := &TopicDesc{Id: topic}
		for word, r := range rows {
			if r == nil {
				continue
			}
			if c := r.At(topic); c > 0 {
				desc.Nt += c
				desc.Tokens = append(desc.Tokens,
					TokenDesc{template.HTML(v.Token(int32(word))), c})
			}
		}
		sort.Slice(desc.Tokens, func(i, j int) bool {
			return desc.Tokens[i].Count > desc.Tokens[j].Count
		})
		if len(desc.Tokens) > maxWordsPerTopic {
			desc.Tokens = desc.Tokens[:maxWordsPerTopic]
		}
		descs[topic] = desc
	})

	log.Printf("Done generating topic descriptions.")
	return descs
}

type TopicDesc struct {
	Id     int
	Nt     int64
	Tokens []TokenDesc
}
type TokenDesc struct {
	Word  template.HTML
	Count int64
}
