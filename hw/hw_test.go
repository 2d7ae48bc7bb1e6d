package hw

import (
	"reflect"
	"testing"
)

func TestBytesWordsRoundTrip(t *testing.T) {
	words := []Word{0x0000, 0xBEEF, 0x1234, 0xFFFF}
	b := WordsToBytes(words)
	got, err := BytesToWords(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, words) {
		t.Fatalf("round trip mismatch: got %v want %v", got, words)
	}
}

func TestBytesToWordsOddParity(t *testing.T) {
	if _, err := BytesToWords([]Byte{0x01, 0x02, 0x03}); err == nil {
		t.Fatal("expected parity error for odd-length byte slice")
	}
}

func TestWordFromI64Wrapping(t *testing.T) {
	got, err := WordFromI64Wrapping(-1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0xFFFF {
		t.Fatalf("got %#04x want 0xFFFF", got)
	}

	got, err = WordFromI64Wrapping(3)
	if err != nil || got != 3 {
		t.Fatalf("got %#04x, %v; want 3, nil", got, err)
	}
}

func TestInstEncodeDecodeRoundTrip(t *testing.T) {
	// IU3 is the opcode's low 3 bits: 0x1AB&7 = 3 = A.
	i := Inst{LoadData: true, Opcode: 0x1AB, IU1: A, IU2: B, IU3: A}
	got := Decode(i.Encode())
	if got != i {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, i)
	}
}

func TestIUEncodeDecode(t *testing.T) {
	w := EncodeAll(A, B, SP)
	iu1, iu2, iu3 := DecodeAll(w)
	if iu1 != A || iu2 != B || iu3 != SP {
		t.Fatalf("got (%v,%v,%v) want (A,B,SP)", iu1, iu2, iu3)
	}
}

func TestByteFlip(t *testing.T) {
	if ByteFlip(0xAABB) != 0xBBAA {
		t.Fatalf("got %#04x want 0xBBAA", ByteFlip(0xAABB))
	}
}

func TestBusPulledValuePanicsForFloating(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic reading floating bus F")
		}
	}()
	_ = BusF.PulledValue()
}
