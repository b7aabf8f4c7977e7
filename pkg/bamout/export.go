// Package bamout exports collapsed read collections as unmapped BAM so
// downstream tools can consume them with standard alignment tooling. Each
// multi-record becomes one unmapped record (or a Read1/Read2 pair), tagged
// with its barcode (BC:Z) and contributing read count (XN:i).
package bamout

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/Sergio7Z/imseq/pkg/collapse"
)

// Write exports the collection to path as an unmapped BAM. "-" writes to
// stdout.
func Write(path string, coll *collapse.Collection) error {
	var out io.Writer
	if path == "-" {
		out = os.Stdout
	} else {
		fh, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file %s: %w", path, err)
		}
		defer fh.Close()
		out = fh
	}

	header, err := sam.NewHeader(nil, nil)
	if err != nil {
		return fmt.Errorf("create BAM header: %w", err)
	}
	bw, err := bam.NewWriter(out, header, 1)
	if err != nil {
		return fmt.Errorf("create BAM writer: %w", err)
	}

	for _, m := range coll.Records() {
		name := representativeName(m)
		if m.Paired {
			fw, err := buildRecord(name, m, m.Seq, m.MeanQual, sam.Paired|sam.Unmapped|sam.MateUnmapped|sam.Read1)
			if err != nil {
				return err
			}
			rev, err := buildRecord(name, m, m.RevSeq, m.RevMeanQual, sam.Paired|sam.Unmapped|sam.MateUnmapped|sam.Read2)
			if err != nil {
				return err
			}
			if err := bw.Write(fw); err != nil {
				return fmt.Errorf("write BAM record %s: %w", name, err)
			}
			if err := bw.Write(rev); err != nil {
				return fmt.Errorf("write BAM record %s: %w", name, err)
			}
			continue
		}
		rec, err := buildRecord(name, m, m.Seq, m.MeanQual, sam.Unmapped)
		if err != nil {
			return err
		}
		if err := bw.Write(rec); err != nil {
			return fmt.Errorf("write BAM record %s: %w", name, err)
		}
	}

	if err := bw.Close(); err != nil {
		return fmt.Errorf("close BAM writer: %w", err)
	}
	return nil
}

// representativeName picks the lexicographically smallest contributing
// read ID so repeated exports of the same collection are identical.
func representativeName(m *collapse.MultiRecord) string {
	name := ""
	for id := range m.IDs {
		if name == "" || id < name {
			name = id
		}
	}
	return name
}

func buildRecord(name string, m *collapse.MultiRecord, sq string, meanQual []float64, flags sam.Flags) (*sam.Record, error) {
	rec := &sam.Record{
		Name:    name,
		Pos:     -1,
		MatePos: -1,
		Flags:   flags,
		Seq:     sam.NewSeq([]byte(sq)),
		Qual:    qualBytes(meanQual),
	}
	if m.Barcode != "" {
		aux, err := sam.NewAux(sam.NewTag("BC"), m.Barcode)
		if err != nil {
			return nil, fmt.Errorf("build BC tag for %s: %w", name, err)
		}
		rec.AuxFields = append(rec.AuxFields, aux)
	}
	aux, err := sam.NewAux(sam.NewTag("XN"), m.Count())
	if err != nil {
		return nil, fmt.Errorf("build XN tag for %s: %w", name, err)
	}
	rec.AuxFields = append(rec.AuxFields, aux)
	return rec, nil
}

// qualBytes rounds a mean quality curve back to integral Phred values.
func qualBytes(mean []float64) []byte {
	qual := make([]byte, len(mean))
	for i, q := range mean {
		v := math.Round(q)
		if v < 0 {
			v = 0
		} else if v > 93 {
			v = 93
		}
		qual[i] = byte(v)
	}
	return qual
}
