package digest_test

import (
	"math"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
)

func TestHash(t *testing.T) {
	const exp = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	if got := digest.Hash(nil); got != exp {
		t.Fatalf("got %s, exp %s", got, exp)
	}

	if len(digest.ZeroHash) != 64 || !digest.HasZeroPrefix(digest.ZeroHash, 64) {
		t.Fatalf("zero hash is malformed: %s", digest.ZeroHash)
	}
}

func TestHashValue(t *testing.T) {
	v := struct {
		B int `json:"b"`
		A int `json:"a"`
	}{B: 1, A: 2}

	data, err := digest.Canonical(v)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != `{"b":1,"a":2}` {
		t.Fatalf("declared field order not kept: %s", data)
	}

	if digest.HashValue(v) != digest.Hash(data) {
		t.Fatal("hash of value doesn't match hash of its canonical form")
	}

	if digest.HashValue(math.NaN()) != digest.ZeroHash {
		t.Fatal("an unencodable value should hash to the zero hash")
	}
}

func TestHasZeroPrefix(t *testing.T) {
	tt := []struct {
		hash string
		n    uint
		exp  bool
	}{
		{"000abc", 3, true},
		{"000abc", 4, false},
		{"0abc", 0, true},
		{"00", 3, false},
	}

	for _, tst := range tt {
		if got := digest.HasZeroPrefix(tst.hash, tst.n); got != tst.exp {
			t.Errorf("HasZeroPrefix(%q, %d) = %v, exp %v", tst.hash, tst.n, got, tst.exp)
		}
	}
}
