package collapse

import (
	"github.com/cheggaaa/pb/v3"

	"github.com/Sergio7Z/imseq/pkg/fastq"
)

// progressInterval is the number of records between progress bar updates.
const progressInterval = 1234

// ReadRecords drives one ingestion batch. The collection is cleared, then
// records are pulled from streams one at a time: barcode splitting (when
// configured), quality control, orientation sync and aggregation. Rejected
// reads are appended to rejects with their reason; a failed barcode split
// rejects the read as TooShortForBarcode without running the gate.
//
// count caps the batch size; 0 ingests until the streams are exhausted.
// The return value reports whether the streams still hold records, so a
// driver can process arbitrarily large inputs in bounded batches. I/O and
// parse failures abort the pass immediately.
func ReadRecords(coll *Collection, rejects *[]fastq.RejectEvent, streams *fastq.InputStreams, opts *fastq.Options, count uint64) (more bool, err error) {
	var bar *pb.ProgressBar
	if opts.Progress && streams.TotalInBytes > 0 {
		bar = pb.Full.Start64(streams.TotalInBytes)
		bar.Set(pb.Bytes, true)
		defer bar.Finish()
	}

	coll.Clear()
	var complete, blockBytes uint64
	rec := &fastq.Record{}
	for !streams.AtEnd() {
		if count > 0 && complete == count {
			return !streams.AtEnd(), nil
		}
		if err := streams.Read(rec); err != nil {
			return false, err
		}
		if opts.TruncateLength > 0 {
			rec.Truncate(opts.TruncateLength)
		}
		split := fastq.SplitBarcode(rec, opts)

		complete++
		blockBytes += rec.ApproxSize()
		if complete%progressInterval == 0 && bar != nil {
			bar.Add64(int64(blockBytes))
			blockBytes = 0
		}

		reason := fastq.TooShortForBarcode
		if split {
			reason = fastq.QualityControl(rec, opts)
		}
		if reason != fastq.None {
			*rejects = append(*rejects, fastq.RejectEvent{ID: rec.ID, Reason: reason})
			continue
		}
		if err := rec.SyncOrientation(opts); err != nil {
			return false, err
		}
		coll.FindOrInsert(rec, true)
	}
	return false, nil
}
