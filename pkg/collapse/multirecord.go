// Package collapse aggregates quality-controlled reads that share an
// identical (barcode, sequence[, mate sequence]) key into multi-records
// carrying the union of source read IDs and a running mean quality curve.
package collapse

import (
	"fmt"
	"strings"

	"github.com/Sergio7Z/imseq/pkg/fastq"
)

// MultiRecord is the aggregated representation of all reads sharing one
// key tuple. MeanQual (and RevMeanQual for paired-end data) hold the
// per-position arithmetic mean of the contributing quality values on the
// Phred scale; their length equals the represented sequence length once a
// read has been folded in.
type MultiRecord struct {
	Barcode string
	Seq     string
	RevSeq  string
	Paired  bool

	IDs         map[string]struct{}
	MeanQual    []float64
	RevMeanQual []float64
}

// NewMultiRecord seeds a multi-record from a single read: ID set {rec.ID},
// mean quality equal to the read's own quality values.
func NewMultiRecord(rec *fastq.Record) *MultiRecord {
	m := &MultiRecord{
		Barcode: string(rec.Barcode),
		Seq:     string(rec.Seq),
		Paired:  rec.Paired,
		IDs:     map[string]struct{}{rec.ID: {}},
	}
	m.MeanQual = updateMeanQual(nil, 0, rec.ReadQual())
	if rec.Paired {
		m.RevSeq = string(rec.RevSeq)
		m.RevMeanQual = updateMeanQual(nil, 0, rec.MateQual())
	}
	return m
}

// Count returns the number of contributing reads.
func (m *MultiRecord) Count() int { return len(m.IDs) }

// Add folds one more read into the multi-record, updating the ID set and
// the running means. Sequence identity is not re-checked here; callers
// must have matched the key tuple already. The read's ID must not already
// be a member.
func (m *MultiRecord) Add(rec *fastq.Record) {
	weight := uint64(len(m.IDs))
	m.IDs[rec.ID] = struct{}{}
	if uint64(len(m.IDs)) == weight {
		panic("collapse: read folded into multi-record twice")
	}
	m.MeanQual = updateMeanQual(m.MeanQual, weight, rec.ReadQual())
	if m.Paired {
		m.RevMeanQual = updateMeanQual(m.RevMeanQual, weight, rec.MateQual())
	}
}

// Skeleton returns a read with the multi-record's sequences and barcode,
// an empty ID and no quality values. It is the lookup key used when
// merging pre-aggregated records.
func (m *MultiRecord) Skeleton() *fastq.Record {
	rec := &fastq.Record{
		Seq:     []byte(m.Seq),
		Barcode: []byte(m.Barcode),
		Paired:  m.Paired,
	}
	if m.Paired {
		rec.RevSeq = []byte(m.RevSeq)
	}
	return rec
}

// String renders the multi-record as a tab-separated diagnostic summary:
// contributing read count, barcode and sequence(s).
func (m *MultiRecord) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\t%s\t%s", len(m.IDs), m.Barcode, m.Seq)
	if m.Paired {
		fmt.Fprintf(&b, "\t%s", m.RevSeq)
	}
	return b.String()
}

func (m *MultiRecord) clone() *MultiRecord {
	c := &MultiRecord{
		Barcode:     m.Barcode,
		Seq:         m.Seq,
		RevSeq:      m.RevSeq,
		Paired:      m.Paired,
		IDs:         make(map[string]struct{}, len(m.IDs)),
		MeanQual:    append([]float64(nil), m.MeanQual...),
		RevMeanQual: append([]float64(nil), m.RevMeanQual...),
	}
	for id := range m.IDs {
		c.IDs[id] = struct{}{}
	}
	return c
}

// updateMeanQual folds one quality vector of weight 1 into a running mean
// over weight contributions. A nil mean with weight 0 starts a new mean.
// Mismatched lengths are a programmer fault.
func updateMeanQual(mean []float64, weight uint64, qual []byte) []float64 {
	if !(len(mean) == 0 && weight == 0) && (len(mean) != len(qual) || weight == 0) {
		panic("collapse: mean quality length mismatch")
	}
	if weight == 0 {
		mean = make([]float64, len(qual))
	}
	for i, q := range qual {
		mean[i] = (mean[i]*float64(weight) + float64(int(q)-fastq.PhredOffset)) / float64(weight+1)
	}
	return mean
}

// combineMeanQual combines two pre-aggregated running means of sizes tw
// and sw into one mean over tw+sw contributions.
func combineMeanQual(target []float64, tw uint64, src []float64, sw uint64) []float64 {
	if !(len(target) == 0 && tw == 0) && (len(target) != len(src) || len(target) == 0) {
		panic("collapse: mean quality length mismatch")
	}
	if len(target) == 0 {
		return append([]float64(nil), src...)
	}
	for i := range target {
		target[i] = (target[i]*float64(tw) + src[i]*float64(sw)) / float64(tw+sw)
	}
	return target
}
