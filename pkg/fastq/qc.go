package fastq

import "bytes"

// RejectReason classifies why a read was excluded from aggregation.
type RejectReason int

const (
	// None marks a read that passed all checks.
	None RejectReason = iota
	// TooShortForBarcode marks a read shorter than the barcode length.
	TooShortForBarcode
	// NInBarcode marks a barcode containing an undetermined base.
	NInBarcode
	// LowQualityBarcodeBase marks a barcode base below the threshold.
	LowQualityBarcodeBase
	// AverageQualFail marks a read whose average quality is too low.
	AverageQualFail
	// ReadTooShort marks a read below the minimum read length.
	ReadTooShort
)

// String returns the reason as written to the reject log.
func (r RejectReason) String() string {
	switch r {
	case None:
		return "NONE"
	case TooShortForBarcode:
		return "TOO_SHORT_FOR_BARCODE"
	case NInBarcode:
		return "N_IN_BARCODE"
	case LowQualityBarcodeBase:
		return "LOW_QUALITY_BARCODE_BASE"
	case AverageQualFail:
		return "AVERAGE_QUAL_FAIL"
	case ReadTooShort:
		return "READ_TOO_SHORT"
	}
	return "UNKNOWN"
}

// RejectEvent is one reject-log entry.
type RejectEvent struct {
	ID     string
	Reason RejectReason
}

// QualityControl checks rec against the configured thresholds and returns
// the first failing check, or None. Checks run in a fixed order and
// short-circuit: ambiguous barcode base, low quality barcode base, average
// quality, read length. The record may be modified: with SingleEndFallback
// a paired-end record whose forward read fails the average quality or
// length check is kept with an emptied forward read.
func QualityControl(rec *Record, opts *Options) RejectReason {
	// fastx keeps the input's case, so both N and n are undetermined.
	if bytes.ContainsAny(rec.Barcode, "Nn") {
		return NInBarcode
	}
	if opts.BcQmin > 0 && anyQualityBelow(barcodeQual(rec, opts), opts.BcQmin) {
		return LowQualityBarcodeBase
	}
	if opts.Qmin > 0 && averageQualityBelow(rec, opts.Qmin, opts.SingleEndFallback) {
		return AverageQualFail
	}
	if readTooShort(rec, opts.MinReadLength, opts.SingleEndFallback) {
		return ReadTooShort
	}
	return None
}

// barcodeQual returns the quality values of the barcode region, taken from
// the front of the carrier read's original quality vector.
func barcodeQual(rec *Record, opts *Options) []byte {
	_, qual, _ := rec.barcodeCarrier(opts)
	if len(rec.Barcode) > len(qual) {
		panic("fastq: barcode longer than quality vector")
	}
	return qual[:len(rec.Barcode)]
}

func anyQualityBelow(qual []byte, min int) bool {
	for _, q := range qual {
		if int(q)-PhredOffset < min {
			return true
		}
	}
	return false
}

func averageQual(qual []byte) float64 {
	if len(qual) == 0 {
		return 0
	}
	sum := 0
	for _, q := range qual {
		sum += int(q) - PhredOffset
	}
	return float64(sum) / float64(len(qual))
}

// averageQualityBelow checks the average quality of the complete,
// untruncated quality vector of each read. For paired-end records the
// reverse read must always pass; a failing forward read is tolerated with
// singleEndFallback, which empties the forward sequence.
func averageQualityBelow(rec *Record, min int, singleEndFallback bool) bool {
	if !rec.Paired {
		return averageQual(rec.Qual) < float64(min)
	}
	if averageQual(rec.RevQual) < float64(min) {
		return true
	}
	if averageQual(rec.Qual) >= float64(min) {
		return false
	}
	if !singleEndFallback {
		return true
	}
	rec.Seq = rec.Seq[:0]
	return false
}

// readTooShort applies the minimum read length. Paired-end records reject
// on a short reverse read; a short forward read is tolerated with
// singleEndFallback, which empties the forward sequence.
func readTooShort(rec *Record, minLength int, singleEndFallback bool) bool {
	if !rec.Paired {
		return len(rec.Seq) < minLength
	}
	if len(rec.RevSeq) < minLength {
		return true
	}
	if len(rec.Seq) >= minLength {
		return false
	}
	if !singleEndFallback {
		return true
	}
	rec.Seq = rec.Seq[:0]
	return false
}
