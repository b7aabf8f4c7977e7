package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/Sergio7Z/imseq/pkg/collapse"
	"github.com/Sergio7Z/imseq/pkg/fastq"
)

var collapseFlags struct {
	ingestFlags
	output    string
	batchSize uint64
}

var collapseCmd = &cobra.Command{
	Use:   "collapse",
	Short: "Collapse FASTQ reads into aggregated records",
	Long: `Collapse reads sharing an identical (barcode, sequence) key into one
record per key and write them as tab-separated lines: contributing read
count, barcode and sequence(s).

With --batch-size the input is processed in bounded batches; each batch is
collapsed independently and appended to the output.

Example:
  imseq collapse -1 reads.fastq.gz -b 10 -q 30 -o collapsed.tsv.zst`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &collapseFlags
		if err := f.validate(); err != nil {
			return err
		}

		streams, err := f.openStreams()
		if err != nil {
			return err
		}
		defer streams.Close()

		out, closeOut, err := collapse.OpenOutput(f.output)
		if err != nil {
			return err
		}

		log.Printf("collapsing reads from %s", f.reads)
		coll := collapse.NewCollection()
		var rejects []fastq.RejectEvent
		var batches, total int
		for {
			more, err := collapse.ReadRecords(coll, &rejects, streams, f.options(), f.batchSize)
			if err != nil {
				closeOut()
				return err
			}
			if err := coll.Dump(out); err != nil {
				closeOut()
				return fmt.Errorf("write collapsed records to %s: %w", f.output, err)
			}
			batches++
			total += coll.Len()
			if !more {
				break
			}
		}
		if err := closeOut(); err != nil {
			return fmt.Errorf("close output file %s: %w", f.output, err)
		}
		if err := f.writeRejects(rejects); err != nil {
			return err
		}

		log.Printf("done: %d collapsed records in %d batch(es), %d reads rejected", total, batches, len(rejects))
		return nil
	},
}

func init() {
	addIngestFlags(collapseCmd, &collapseFlags.ingestFlags)
	collapseCmd.Flags().StringVarP(&collapseFlags.output, "out", "o", "-", "Output file ('-' for stdout; '.gz' and '.zst' select compression)")
	collapseCmd.Flags().Uint64Var(&collapseFlags.batchSize, "batch-size", 0, "Collapse the input in batches of this many reads (0 = one pass)")
}
