package collapse

import (
	"fmt"
	"io"

	"github.com/Sergio7Z/imseq/pkg/fastq"
)

// NoMatch is returned by Find when no multi-record matches the key tuple.
const NoMatch = -1

// Collection owns the multi-records of one ingestion pass. Records live in
// an append-only arena and are located through a nested exact-match index
// keyed barcode -> sequence -> mate sequence. Single-end records use the
// empty string as the mate key, so both record shapes share one index
// layout. Every key path resolves to exactly one arena position and no two
// positions share a full key tuple.
type Collection struct {
	records []*MultiRecord
	index   map[string]map[string]map[string]int
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{index: make(map[string]map[string]map[string]int)}
}

// Len returns the number of multi-records in the collection.
func (c *Collection) Len() int { return len(c.records) }

// At returns the multi-record at the given arena position. A position
// outside the arena is a programmer fault.
func (c *Collection) At(pos int) *MultiRecord {
	if pos < 0 || pos >= len(c.records) {
		panic(fmt.Sprintf("collapse: multi-record position %d out of range [0,%d)", pos, len(c.records)))
	}
	return c.records[pos]
}

// Records returns the multi-records in insertion order. The slice is owned
// by the collection; callers must not modify it.
func (c *Collection) Records() []*MultiRecord { return c.records }

// Clear drops all multi-records and resets the index.
func (c *Collection) Clear() {
	c.records = nil
	c.index = make(map[string]map[string]map[string]int)
}

// Find returns the arena position of the multi-record matching the
// record's key tuple, or NoMatch. The record's ID plays no role here.
func (c *Collection) Find(rec *fastq.Record) int {
	return c.find(string(rec.Barcode), string(rec.Seq), string(rec.RevSeq))
}

func (c *Collection) find(barcode, sq, mate string) int {
	seqMap, ok := c.index[barcode]
	if !ok {
		return NoMatch
	}
	mateMap, ok := seqMap[sq]
	if !ok {
		return NoMatch
	}
	pos, ok := mateMap[mate]
	if !ok {
		return NoMatch
	}
	return pos
}

// register appends m to the arena and indexes it. The key tuple must not
// be mapped yet.
func (c *Collection) register(m *MultiRecord) *MultiRecord {
	seqMap, ok := c.index[m.Barcode]
	if !ok {
		seqMap = make(map[string]map[string]int)
		c.index[m.Barcode] = seqMap
	}
	mateMap, ok := seqMap[m.Seq]
	if !ok {
		mateMap = make(map[string]int)
		seqMap[m.Seq] = mateMap
	}
	if _, dup := mateMap[m.RevSeq]; dup {
		panic("collapse: key tuple already mapped")
	}
	c.records = append(c.records, m)
	mateMap[m.RevSeq] = len(c.records) - 1
	return m
}

// FindOrInsert returns the multi-record containing rec, matching on the
// key tuple only. If the matching record already contains rec's ID it is
// returned unchanged, so reprocessing a read never double-counts it. With
// insert=true a new read is folded into the match, or a fresh multi-record
// is created when there is none; with insert=false a missing match yields
// nil and an existing one is returned unchanged.
func (c *Collection) FindOrInsert(rec *fastq.Record, insert bool) *MultiRecord {
	pos := c.Find(rec)
	if pos != NoMatch {
		m := c.At(pos)
		if _, seen := m.IDs[rec.ID]; seen {
			return m
		}
		if !insert {
			return m
		}
		m.Add(rec)
		return m
	}
	if !insert {
		return nil
	}
	return c.register(NewMultiRecord(rec))
}

// Merge combines a multi-record built elsewhere into the collection.
// Matching considers sequence content only. On a match the running means
// are combined with the two group sizes as weights and the ID sets are
// unioned; otherwise a copy of m becomes a new entry. The contained record
// is returned.
func (c *Collection) Merge(m *MultiRecord) *MultiRecord {
	pos := c.find(m.Barcode, m.Seq, m.RevSeq)
	if pos == NoMatch {
		return c.register(m.clone())
	}
	target := c.At(pos)
	tw, sw := uint64(len(target.IDs)), uint64(len(m.IDs))
	target.MeanQual = combineMeanQual(target.MeanQual, tw, m.MeanQual, sw)
	if target.Paired {
		target.RevMeanQual = combineMeanQual(target.RevMeanQual, tw, m.RevMeanQual, sw)
	}
	for id := range m.IDs {
		target.IDs[id] = struct{}{}
	}
	return target
}

// Dump writes a diagnostic rendering of the collection: one tab-separated
// line per multi-record, in insertion order.
func (c *Collection) Dump(w io.Writer) error {
	for _, m := range c.records {
		if _, err := fmt.Fprintln(w, m.String()); err != nil {
			return err
		}
	}
	return nil
}
