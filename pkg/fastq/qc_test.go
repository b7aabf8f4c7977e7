package fastq

import (
	"bytes"
	"testing"
)

// qualAt builds a quality vector of n bases at Phred value q.
func qualAt(n, q int) []byte {
	return bytes.Repeat([]byte{byte(q + PhredOffset)}, n)
}

func singleEnd(seq string, qual []byte) *Record {
	return &Record{ID: "r1", Seq: []byte(seq), Qual: qual}
}

func TestQualityControlSingleEnd(t *testing.T) {
	tests := []struct {
		name string
		rec  *Record
		opts Options
		want RejectReason
	}{
		{
			"pass",
			singleEnd("ACGTACGT", qualAt(8, 35)),
			Options{BcQmin: 30, Qmin: 30, MinReadLength: 4},
			None,
		},
		{
			"ambiguous barcode base",
			&Record{ID: "r1", Seq: []byte("ACGT"), Barcode: []byte("ACNT"), Qual: qualAt(8, 35)},
			Options{},
			NInBarcode,
		},
		{
			"lowercase ambiguous barcode base",
			&Record{ID: "r1", Seq: []byte("acgt"), Barcode: []byte("acnt"), Qual: qualAt(8, 35)},
			Options{},
			NInBarcode,
		},
		{
			"low quality barcode base",
			&Record{ID: "r1", Seq: []byte("ACGT"), Barcode: []byte("GGGG"),
				Qual: append(qualAt(2, 35), append(qualAt(1, 10), qualAt(5, 35)...)...)},
			Options{BcQmin: 20},
			LowQualityBarcodeBase,
		},
		{
			"average quality fail",
			singleEnd("ACGTACGT", qualAt(8, 20)),
			Options{Qmin: 25},
			AverageQualFail,
		},
		{
			"read too short",
			singleEnd("ACG", qualAt(3, 35)),
			Options{MinReadLength: 4},
			ReadTooShort,
		},
		{
			"thresholds disabled",
			singleEnd("ACGTACGT", qualAt(8, 2)),
			Options{},
			None,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QualityControl(tt.rec, &tt.opts); got != tt.want {
				t.Errorf("QualityControl() = %v, want %v", got, tt.want)
			}
		})
	}
}

// The gate must report the first failing check: a record with an ambiguous
// barcode base that is also too short fails as NInBarcode.
func TestQualityControlCheckOrder(t *testing.T) {
	rec := &Record{ID: "r1", Seq: []byte("AC"), Barcode: []byte("NNNN"), Qual: qualAt(6, 35)}
	opts := &Options{MinReadLength: 50}
	if got := QualityControl(rec, opts); got != NInBarcode {
		t.Errorf("QualityControl() = %v, want %v", got, NInBarcode)
	}
}

// Barcode qualities are read from the front of the original quality
// vector, not from the truncated sequence.
func TestQualityControlBarcodeRegionQualities(t *testing.T) {
	rec := singleEnd("ACGTACGTACGT", append(qualAt(4, 5), qualAt(8, 35)...))
	opts := &Options{BarcodeLength: 4, BcQmin: 20}
	if !SplitBarcode(rec, opts) {
		t.Fatal("SplitBarcode() failed")
	}
	if got := QualityControl(rec, opts); got != LowQualityBarcodeBase {
		t.Errorf("QualityControl() = %v, want %v", got, LowQualityBarcodeBase)
	}
}

func TestQualityControlPairedEnd(t *testing.T) {
	tests := []struct {
		name    string
		fwLen   int
		revLen  int
		fwQ     int
		revQ    int
		opts    Options
		want    RejectReason
		fwEmpty bool
	}{
		{"pass", 20, 20, 35, 35, Options{Qmin: 30, MinReadLength: 10}, None, false},
		{"reverse too short", 20, 5, 35, 35, Options{MinReadLength: 10}, ReadTooShort, false},
		{"forward too short rejects", 5, 20, 35, 35, Options{MinReadLength: 10}, ReadTooShort, false},
		{"forward too short with fallback", 5, 20, 35, 35,
			Options{MinReadLength: 10, SingleEndFallback: true}, None, true},
		{"reverse average fail", 20, 20, 35, 20, Options{Qmin: 30}, AverageQualFail, false},
		{"forward average fail rejects", 20, 20, 20, 35, Options{Qmin: 30}, AverageQualFail, false},
		{"forward average fail with fallback", 20, 20, 20, 35,
			Options{Qmin: 30, SingleEndFallback: true}, None, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Record{
				ID:      "r1",
				Seq:     bytes.Repeat([]byte{'A'}, tt.fwLen),
				RevSeq:  bytes.Repeat([]byte{'C'}, tt.revLen),
				Qual:    qualAt(tt.fwLen, tt.fwQ),
				RevQual: qualAt(tt.revLen, tt.revQ),
				Paired:  true,
			}
			if got := QualityControl(rec, &tt.opts); got != tt.want {
				t.Fatalf("QualityControl() = %v, want %v", got, tt.want)
			}
			if tt.fwEmpty && len(rec.Seq) != 0 {
				t.Errorf("forward read not emptied by fallback: %q", rec.Seq)
			}
			if !tt.fwEmpty && len(rec.Seq) == 0 {
				t.Error("forward read unexpectedly emptied")
			}
		})
	}
}

func TestRejectReasonString(t *testing.T) {
	tests := []struct {
		reason RejectReason
		want   string
	}{
		{None, "NONE"},
		{TooShortForBarcode, "TOO_SHORT_FOR_BARCODE"},
		{NInBarcode, "N_IN_BARCODE"},
		{LowQualityBarcodeBase, "LOW_QUALITY_BARCODE_BASE"},
		{AverageQualFail, "AVERAGE_QUAL_FAIL"},
		{ReadTooShort, "READ_TOO_SHORT"},
	}
	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
