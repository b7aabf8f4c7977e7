package collapse

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/shenwei356/xopen"

	"github.com/Sergio7Z/imseq/pkg/fastq"
)

// OpenOutput opens a plain-text output destination. A ".zst" suffix
// selects zstd compression; everything else (including ".gz" and "-" for
// stdout) is handled by xopen. The returned close function flushes and
// closes all layers.
func OpenOutput(path string) (io.Writer, func() error, error) {
	if strings.HasSuffix(path, ".zst") {
		fh, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("create output file %s: %w", path, err)
		}
		zw, err := zstd.NewWriter(fh, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			fh.Close()
			return nil, nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		closeAll := func() error {
			if err := zw.Close(); err != nil {
				fh.Close()
				return err
			}
			return fh.Close()
		}
		return zw, closeAll, nil
	}
	fh, err := xopen.Wopen(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file %s: %w", path, err)
	}
	return fh, fh.Close, nil
}

// WriteTSV dumps the collection's multi-records to path, one tab-separated
// line per record.
func WriteTSV(coll *Collection, path string) error {
	w, closeFn, err := OpenOutput(path)
	if err != nil {
		return err
	}
	if err := coll.Dump(w); err != nil {
		closeFn()
		return fmt.Errorf("write collapsed records to %s: %w", path, err)
	}
	return closeFn()
}

// WriteRejects writes the reject log to path: one "id<TAB>reason" line per
// rejected read, in rejection order.
func WriteRejects(events []fastq.RejectEvent, path string) error {
	w, closeFn, err := OpenOutput(path)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", ev.ID, ev.Reason); err != nil {
			closeFn()
			return fmt.Errorf("write reject log to %s: %w", path, err)
		}
	}
	return closeFn()
}
