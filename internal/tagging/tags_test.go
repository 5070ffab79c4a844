package tagging

import (
	"testing"

	"solana-trade-recon/internal/domain"
)

func TestTags_ZeroValue(t *testing.T) {
	var tags Tags
	if tags.Get(3) != domain.TagNormal {
		t.Error("zero view should report normal")
	}
	if _, ok := tags.Lookup(3); ok {
		t.Error("zero view should not contain seqs")
	}
	if tags.Len() != 0 {
		t.Errorf("expected len 0, got %d", tags.Len())
	}
}

func TestTags_EachInSeqOrder(t *testing.T) {
	tags := NewTags(map[int]domain.EdgeTag{
		4: domain.TagFee,
		0: domain.TagNormal,
		2: domain.TagTip,
	})

	var seqs []int
	tags.Each(func(seq int, _ domain.EdgeTag) {
		seqs = append(seqs, seq)
	})

	want := []int{0, 2, 4}
	if len(seqs) != len(want) {
		t.Fatalf("expected %v, got %v", want, seqs)
	}
	for i := range want {
		if seqs[i] != want[i] {
			t.Errorf("expected %v, got %v", want, seqs)
			break
		}
	}
}

func TestTags_NewTagsCopies(t *testing.T) {
	src := map[int]domain.EdgeTag{0: domain.TagFee}
	tags := NewTags(src)
	src[0] = domain.TagTip

	if tags.Get(0) != domain.TagFee {
		t.Error("view must not alias the source map")
	}
	if !tags.Is(0, domain.TagFee, domain.TagTip) || tags.Is(0, domain.TagDust) {
		t.Error("Is mismatch")
	}
}
