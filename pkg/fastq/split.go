package fastq

// SplitBarcode extracts the inline barcode prefix from the barcode-carrying
// read of rec and truncates that read to the remaining suffix. The quality
// vector is not re-sliced; barcode-region qualities stay addressable at
// their original positions for the quality control gate.
//
// Returns false if the carrier read is shorter than the configured barcode
// length; the barcode field is cleared and the sequence left unmodified.
// A barcode length of 0 is a no-op that trivially succeeds.
func SplitBarcode(rec *Record, opts *Options) bool {
	if opts.BarcodeLength == 0 {
		return true
	}
	sq, _, off := rec.barcodeCarrier(opts)
	if len(*sq) < opts.BarcodeLength {
		rec.Barcode = rec.Barcode[:0]
		return false
	}
	rec.Barcode = append(rec.Barcode[:0], (*sq)[:opts.BarcodeLength]...)
	*sq = (*sq)[opts.BarcodeLength:]
	*off += opts.BarcodeLength
	return true
}
