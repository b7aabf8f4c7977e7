package fastq

// Options bundles the user-specified read processing parameters shared by
// barcode splitting, quality control and the ingestion loop.
type Options struct {
	// BarcodeLength is the length of the inline barcode prefix.
	// 0 disables barcode splitting entirely.
	BarcodeLength int

	// BarcodeVDJRead selects the V(D)J read as the barcode carrier for
	// paired-end records. Ignored for single-end records, where the only
	// read carries the barcode.
	BarcodeVDJRead bool

	// BcQmin is the minimum accepted quality of a single barcode base.
	// 0 disables the check.
	BcQmin int

	// Qmin is the minimum accepted average read quality. 0 disables the
	// check.
	Qmin int

	// MinReadLength is the minimum accepted read length after barcode
	// splitting.
	MinReadLength int

	// SingleEndFallback allows a paired-end record with an unusable
	// forward read to be kept using only the reverse read.
	SingleEndFallback bool

	// Reverse flips the orientation convention: the V read is reverse
	// complemented instead of the V(D)J read.
	Reverse bool

	// TruncateLength truncates each read to at most this many bases
	// before quality control. 0 disables truncation.
	TruncateLength int

	// Progress enables the progress bar during ingestion.
	Progress bool
}
