package contracts

import "testing"

func TestBreakoutSuffix(t *testing.T) {
	cases := []struct {
		seq  int
		want string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}
	for _, tc := range cases {
		if got := BreakoutSuffix(tc.seq); got != tc.want {
			t.Errorf("BreakoutSuffix(%d) = %s, want %s", tc.seq, got, tc.want)
		}
	}
}

func TestBreakoutSuffixNeverRepeats(t *testing.T) {
	seen := map[string]int{}
	for seq := 0; seq < 1000; seq++ {
		suffix := BreakoutSuffix(seq)
		if prev, dup := seen[suffix]; dup {
			t.Fatalf("suffix %s generated for both %d and %d", suffix, prev, seq)
		}
		seen[suffix] = seq
	}
}
