package utils

import (
	"testing"

	"github.com/wangkuiyi/walklda/core/row"
)

func TestDescribeTopics(t *testing.T) {
	v, e := createTestingVocab()
	if e != nil {
		t.Fatalf("createTestingVocab: %v", e)
	}

	// tiger=0, orange=1, cat=2, apple=3.
	rows := []row.Sparse{
		{0: 5},
		{0: 2, 1: 7},
		nil,
		{1: 1},
	}
	descs := DescribeTopics(rows, v, 2, 1)

	if len(descs) != 2 {
		t.Fatalf("Expecting 2 topic descriptions, got %d", len(descs))
	}
	if descs[0].Nt != 7 {
		t.Errorf("Expecting topic 0 frequency 7, got %d", descs[0].Nt)
	}
	if len(descs[0].Tokens) != 1 || string(descs[0].Tokens[0].Word) != "tiger" ||
		descs[0].Tokens[0].Count != 5 {
		t.Errorf("Expecting top word tiger:5 for topic 0, got %v",
			descs[0].Tokens)
	}
	if descs[1].Nt != 8 {
		t.Errorf("Expecting topic 1 frequency 8, got %d", descs[1].Nt)
	}
	if string(descs[1].Tokens[0].Word) != "orange" {
		t.Errorf("Expecting top word orange for topic 1, got %v",
			descs[1].Tokens)
	}
}
