// Package fastq holds the sequencing read model: single- and paired-end
// records, input streams, inline barcode splitting and quality control.
package fastq

import (
	"fmt"

	"github.com/shenwei356/bio/seq"
)

// PhredOffset is the ASCII offset of Sanger-encoded quality values.
const PhredOffset = 33

// Record is one raw sequencing read. Paired-end records carry both mates;
// single-end records leave RevSeq and RevQual nil.
//
// Seq holds the single-end read or the forward mate. Qual and RevQual keep
// the complete quality vectors as read from the input even after the
// barcode prefix has been split off the sequence; quality values are always
// addressed in the coordinates of the original, untruncated read. seqOff
// and revOff track where the retained sequence starts inside its quality
// vector.
type Record struct {
	ID      string
	Seq     []byte
	RevSeq  []byte
	Barcode []byte
	Qual    []byte
	RevQual []byte
	Paired  bool

	seqOff int
	revOff int
}

// ReadQual returns the quality window aligned to the retained Seq.
func (r *Record) ReadQual() []byte { return alignQual(r.Qual, r.seqOff, len(r.Seq)) }

// MateQual returns the quality window aligned to the retained RevSeq.
func (r *Record) MateQual() []byte { return alignQual(r.RevQual, r.revOff, len(r.RevSeq)) }

func alignQual(qual []byte, off, n int) []byte {
	if off+n > len(qual) {
		panic("fastq: quality vector shorter than sequence")
	}
	return qual[off : off+n]
}

// barcodeCarrier returns pointers to the sequence, quality vector and
// offset of the mate the barcode is extracted from.
func (r *Record) barcodeCarrier(opts *Options) (sq *[]byte, qual []byte, off *int) {
	if r.Paired && opts.BarcodeVDJRead {
		return &r.RevSeq, r.RevQual, &r.revOff
	}
	return &r.Seq, r.Qual, &r.seqOff
}

// ApproxSize estimates the in-memory footprint of the record in bytes. It
// accounts for sequence plus quality storage and is used for progress
// estimation only.
func (r *Record) ApproxSize() uint64 {
	if r.Paired {
		return 2*uint64(len(r.Seq)) + 2*uint64(len(r.RevSeq)) + 2*uint64(len(r.Barcode)) + 2*uint64(len(r.ID)) + 12
	}
	return 2*uint64(len(r.Seq)) + 2*uint64(len(r.Barcode)) + uint64(len(r.ID)) + 6
}

// String renders the record as a tab-separated diagnostic summary.
func (r *Record) String() string {
	if r.Paired {
		return fmt.Sprintf("BARCODE\t%s\tFORWARD\t%s\tREVERSE\t%s", r.Barcode, r.Seq, r.RevSeq)
	}
	return fmt.Sprintf("BARCODE\t%s\tREAD\t%s", r.Barcode, r.Seq)
}

// Truncate shortens each read of the record to at most n bases. Quality
// vectors are left untouched; they are trimmed implicitly through the
// alignment windows.
func (r *Record) Truncate(n int) {
	if len(r.Seq) > n {
		r.Seq = r.Seq[:n]
	}
	if r.Paired && len(r.RevSeq) > n {
		r.RevSeq = r.RevSeq[:n]
	}
}

// SyncOrientation reverse complements the V(D)J read so that all retained
// reads share one orientation. With Options.Reverse the V read is
// complemented instead. The affected quality window is reversed alongside
// and re-anchored, so position-addressed checks must run before this.
func (r *Record) SyncOrientation(opts *Options) error {
	if r.Paired {
		if opts.Reverse {
			return r.revComp(&r.Seq, &r.Qual, &r.seqOff)
		}
		return r.revComp(&r.RevSeq, &r.RevQual, &r.revOff)
	}
	if !opts.Reverse {
		return r.revComp(&r.Seq, &r.Qual, &r.seqOff)
	}
	return nil
}

func (r *Record) revComp(sq *[]byte, qual *[]byte, off *int) error {
	window := alignQual(*qual, *off, len(*sq))
	s, err := seq.NewSeqWithQual(seq.DNAredundant, *sq, window)
	if err != nil {
		return fmt.Errorf("reverse complement of read %s: %w", r.ID, err)
	}
	rc := s.RevCom()
	*sq = rc.Seq
	*qual = rc.Qual
	*off = 0
	return nil
}
