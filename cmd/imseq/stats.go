package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsFlags ingestFlags

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-barcode statistics for a FASTQ input",
	Long: `Ingest and collapse the input, then report per barcode how many reads
were observed in total and how many distinct sequences they collapsed to.

Example:
  imseq stats -1 reads.fastq.gz -b 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &statsFlags
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

		stats := coll.BarcodeStats()

		fmt.Println("===========================================")
		fmt.Println("Barcode Statistics")
		fmt.Println("===========================================")
		fmt.Println()
		fmt.Printf("%-24s%12s%12s\n", "Barcode", "Reads", "Unique")
		for _, bc := range stats.Barcodes {
			label := bc.Barcode
			if label == "" {
				label = "(none)"
			}
			fmt.Printf("%-24s%12d%12d\n", label, bc.Reads, bc.UniqueReads)
		}
		fmt.Println()
		fmt.Printf("Total reads: %d\n", stats.TotalReads)
		fmt.Printf("Total unique reads: %d\n", stats.TotalUniqueReads)
		fmt.Printf("Rejected reads: %d\n", len(rejects))

		return nil
	},
}

func init() {
	addIngestFlags(statsCmd, &statsFlags)
}
