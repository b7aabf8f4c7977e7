package collapse

import (
	"math"
	"testing"

	"github.com/Sergio7Z/imseq/pkg/fastq"
)

func seRecord(id, barcode, seq string, qual ...byte) *fastq.Record {
	if qual == nil {
		for range seq {
			qual = append(qual, 'I')
		}
	}
	return &fastq.Record{ID: id, Barcode: []byte(barcode), Seq: []byte(seq), Qual: qual}
}

func peRecord(id, barcode, fw, rev string) *fastq.Record {
	rec := &fastq.Record{
		ID:      id,
		Barcode: []byte(barcode),
		Seq:     []byte(fw),
		RevSeq:  []byte(rev),
		Paired:  true,
	}
	for range fw {
		rec.Qual = append(rec.Qual, 'I')
	}
	for range rev {
		rec.RevQual = append(rec.RevQual, 'I')
	}
	return rec
}

func qualString(q string) []byte { return []byte(q) }

func almostEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestFindOrInsertCreatesAndFolds(t *testing.T) {
	c := NewCollection()

	m := c.FindOrInsert(seRecord("r1", "GGGG", "ACGT"), true)
	if m == nil || m.Count() != 1 {
		t.Fatalf("first insert: %+v", m)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}

	m2 := c.FindOrInsert(seRecord("r2", "GGGG", "ACGT"), true)
	if m2 != m {
		t.Error("same key tuple produced a second multi-record")
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestFindOrInsertIdempotent(t *testing.T) {
	c := NewCollection()
	rec := seRecord("r1", "GGGG", "ACGT", qualString("!#%'")...)

	m := c.FindOrInsert(rec, true)
	mean := append([]float64(nil), m.MeanQual...)

	again := c.FindOrInsert(seRecord("r1", "GGGG", "ACGT", qualString("!#%'")...), true)
	if again != m {
		t.Error("reinsertion returned a different multi-record")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d after reinsertion, want 1", m.Count())
	}
	if !almostEqual(m.MeanQual, mean) {
		t.Errorf("mean changed after reinsertion: %v -> %v", mean, m.MeanQual)
	}
}

func TestFindOrInsertProbeOnly(t *testing.T) {
	c := NewCollection()
	if m := c.FindOrInsert(seRecord("r1", "GGGG", "ACGT"), false); m != nil {
		t.Errorf("probe of empty collection = %+v, want nil", m)
	}
	if c.Len() != 0 {
		t.Errorf("probe inserted a record: Len() = %d", c.Len())
	}

	c.FindOrInsert(seRecord("r1", "GGGG", "ACGT"), true)
	m := c.FindOrInsert(seRecord("r2", "GGGG", "ACGT"), false)
	if m == nil {
		t.Fatal("probe of existing key = nil")
	}
	if m.Count() != 1 {
		t.Errorf("probe folded the read in: Count() = %d", m.Count())
	}
}

// The running mean must equal the arithmetic mean of all contributing
// quality values, independent of insertion order.
func TestMeanQualityAggregation(t *testing.T) {
	records := []*fastq.Record{
		seRecord("r1", "GGGG", "ACGT", qualString("####")...), // Phred 2
		seRecord("r2", "GGGG", "ACGT", qualString("5555")...), // Phred 20
		seRecord("r3", "GGGG", "ACGT", qualString("IIII")...), // Phred 40
	}
	want := []float64{62.0 / 3, 62.0 / 3, 62.0 / 3, 62.0 / 3}

	orders := [][]int{{0, 1, 2}, {2, 0, 1}, {1, 2, 0}}
	for _, order := range orders {
		c := NewCollection()
		for _, i := range order {
			rec := *records[i]
			c.FindOrInsert(&rec, true)
		}
		if c.Len() != 1 {
			t.Fatalf("order %v: Len() = %d, want 1", order, c.Len())
		}
		m := c.At(0)
		if m.Count() != 3 {
			t.Errorf("order %v: Count() = %d, want 3", order, m.Count())
		}
		if !almostEqual(m.MeanQual, want) {
			t.Errorf("order %v: MeanQual = %v, want %v", order, m.MeanQual, want)
		}
	}
}

func TestExactMatching(t *testing.T) {
	c := NewCollection()
	c.FindOrInsert(seRecord("r1", "GGGG", "ACGTACGT"), true)
	c.FindOrInsert(seRecord("r2", "GGGG", "ACGTACGA"), true) // last base differs
	c.FindOrInsert(seRecord("r3", "GGGG", "TCGTACGT"), true) // first base differs
	c.FindOrInsert(seRecord("r4", "GGGA", "ACGTACGT"), true) // barcode differs
	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}
}

func TestExactMatchingPairedEnd(t *testing.T) {
	c := NewCollection()
	c.FindOrInsert(peRecord("r1", "GGGG", "ACGT", "TTGG"), true)
	c.FindOrInsert(peRecord("r2", "GGGG", "ACGT", "TTGA"), true) // mate differs
	c.FindOrInsert(peRecord("r3", "GGGG", "ACGT", "TTGG"), true)
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if got := c.At(0).Count(); got != 2 {
		t.Errorf("first multi-record Count() = %d, want 2", got)
	}
}

func TestFind(t *testing.T) {
	c := NewCollection()
	if pos := c.Find(seRecord("r1", "GGGG", "ACGT")); pos != NoMatch {
		t.Errorf("Find() on empty collection = %d, want NoMatch", pos)
	}
	c.FindOrInsert(seRecord("r1", "GGGG", "ACGT"), true)
	if pos := c.Find(seRecord("r9", "GGGG", "ACGT")); pos != 0 {
		t.Errorf("Find() = %d, want 0", pos)
	}
	if pos := c.Find(seRecord("r9", "GGGG", "ACGA")); pos != NoMatch {
		t.Errorf("Find() of absent key = %d, want NoMatch", pos)
	}
}

func TestMergeCombinesGroups(t *testing.T) {
	c := NewCollection()
	// Group of two reads at Phred 10.
	c.FindOrInsert(seRecord("r1", "GGGG", "ACGT", qualString("++++")...), true)
	c.FindOrInsert(seRecord("r2", "GGGG", "ACGT", qualString("++++")...), true)

	// Incoming group of one read at Phred 40.
	other := NewMultiRecord(seRecord("x1", "GGGG", "ACGT", qualString("IIII")...))

	m := c.Merge(other)
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if m.Count() != 3 {
		t.Errorf("Count() = %d, want 3", m.Count())
	}
	want := []float64{20, 20, 20, 20} // (10*2 + 40*1) / 3
	if !almostEqual(m.MeanQual, want) {
		t.Errorf("MeanQual = %v, want %v", m.MeanQual, want)
	}
}

func TestMergeInsertsCopy(t *testing.T) {
	c := NewCollection()
	other := NewMultiRecord(seRecord("x1", "GGGG", "ACGT", qualString("IIII")...))

	m := c.Merge(other)
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	// The collection owns its entry; mutating the source must not leak in.
	other.IDs["x2"] = struct{}{}
	if m.Count() != 1 {
		t.Errorf("Count() = %d after mutating the source, want 1", m.Count())
	}
	if pos := c.Find(seRecord("y", "GGGG", "ACGT")); pos != 0 {
		t.Errorf("merged record not indexed: Find() = %d", pos)
	}
}

func TestClear(t *testing.T) {
	c := NewCollection()
	c.FindOrInsert(seRecord("r1", "GGGG", "ACGT"), true)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear(), want 0", c.Len())
	}
	if pos := c.Find(seRecord("r1", "GGGG", "ACGT")); pos != NoMatch {
		t.Errorf("Find() after Clear() = %d, want NoMatch", pos)
	}
}

func TestAtOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("At(0) on empty collection did not panic")
		}
	}()
	NewCollection().At(0)
}
