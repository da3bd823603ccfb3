package row

import (
	"fmt"
	"reflect"
	"testing"
)

func TestNewDense(t *testing.T) {
	d := NewDense(2)
	d_str := "[0 0]"
	if d_str != fmt.Sprint(d) {
		t.Error("NewDense(2), expected", d_str, "got", d)
	}
}

func TestDenseIncDec(t *testing.T) {
	d := NewDense(3)
	d.Inc(1, 2)
	d.Inc(1, 3)
	d.Dec(1, 4)
	if d.At(1) != 1 {
		t.Errorf("Expecting d.At(1) = 1, got %d", d.At(1))
	}

	defer func() {
		if recover() == nil {
			t.Errorf("Expecting panic on negative count")
		}
	}()
	d.Dec(1, 2)
}

func TestDenseClone(t *testing.T) {
	s := NewDense(0)
	c := s.Clone()
	if c.Len() != 0 {
		t.Errorf("Expected %v, got %v", s, c)
	}

	s = Dense{2, 0}
	c = s.Clone()
	if !reflect.DeepEqual(s, c) {
		t.Errorf("Expected %v, got %v", s, c)
	}
}
