package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/Sergio7Z/imseq/pkg/bamout"
)

var exportFlags struct {
	ingestFlags
	output string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export collapsed reads as unmapped BAM",
	Long: `Ingest and collapse the input, then write one unmapped BAM record per
collapsed read (a Read1/Read2 pair for paired-end data). Records carry the
barcode as a BC tag and the contributing read count as an XN tag.

Example:
  imseq export -1 reads.fastq.gz -b 10 -o collapsed.bam`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &exportFlags
		if err := f.validate(); err != nil {
			return err
		}
		coll, rejects, err := f.ingestAll()
		if err != nil {
			return err
		}
		if err := f.writeRejects(rejects); err != nil {
			return err
		}

		if err := bamout.Write(f.output, coll); err != nil {
			return err
		}
		log.Printf("done: %d collapsed records exported, %d reads rejected", coll.Len(), len(rejects))
		return nil
	},
}

func init() {
	addIngestFlags(exportCmd, &exportFlags.ingestFlags)
	exportCmd.Flags().StringVarP(&exportFlags.output, "out", "o", "-", "Output BAM file ('-' for stdout)")
	_ = exportCmd.MarkFlagRequired("out")
}
