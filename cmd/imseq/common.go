package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sergio7Z/imseq/pkg/collapse"
	"github.com/Sergio7Z/imseq/pkg/fastq"
)

// ingestFlags holds the flag values shared by every subcommand that reads
// FASTQ input.
type ingestFlags struct {
	reads         string
	mates         string
	barcodeLength int
	barcodeVDJ    bool
	bcQmin        int
	qmin          int
	minReadLength int
	seFallback    bool
	reverse       bool
	truncate      int
	rejectsFile   string
	noProgress    bool
}

func addIngestFlags(cmd *cobra.Command, f *ingestFlags) {
	flags := cmd.Flags()
	flags.StringVarP(&f.reads, "reads", "1", "", "FASTQ file with reads (required, use '-' for stdin)")
	flags.StringVarP(&f.mates, "mates", "2", "", "FASTQ file with reverse mates (enables paired-end mode)")
	flags.IntVarP(&f.barcodeLength, "barcode-length", "b", 0, "Length of the inline barcode prefix (0 = no barcode)")
	flags.BoolVar(&f.barcodeVDJ, "barcode-vdj-read", false, "Extract the barcode from the V(D)J read instead of the V read")
	flags.IntVar(&f.bcQmin, "bc-min-quality", 0, "Minimum quality of a barcode base (0 = disabled)")
	flags.IntVarP(&f.qmin, "min-quality", "q", 0, "Minimum average read quality (0 = disabled)")
	flags.IntVarP(&f.minReadLength, "min-read-length", "l", 0, "Minimum read length after barcode splitting")
	flags.BoolVar(&f.seFallback, "single-end-fallback", false, "Keep paired-end reads with an unusable forward read as single-end")
	flags.BoolVarP(&f.reverse, "reverse", "r", false, "Reverse complement the V read instead of the V(D)J read")
	flags.IntVar(&f.truncate, "truncate-reads", 0, "Truncate reads to at most this length (0 = disabled)")
	flags.StringVar(&f.rejectsFile, "rejects", "", "Write the reject log to this file")
	flags.BoolVar(&f.noProgress, "no-progress", false, "Disable the progress bar")
	_ = cmd.MarkFlagRequired("reads")
}

func (f *ingestFlags) validate() error {
	if f.barcodeLength < 0 {
		return fmt.Errorf("--barcode-length must be >= 0")
	}
	if f.truncate < 0 {
		return fmt.Errorf("--truncate-reads must be >= 0")
	}
	if f.truncate > 0 && f.truncate <= f.barcodeLength {
		return fmt.Errorf("--truncate-reads must exceed --barcode-length")
	}
	return nil
}

func (f *ingestFlags) options() *fastq.Options {
	return &fastq.Options{
		BarcodeLength:     f.barcodeLength,
		BarcodeVDJRead:    f.barcodeVDJ,
		BcQmin:            f.bcQmin,
		Qmin:              f.qmin,
		MinReadLength:     f.minReadLength,
		SingleEndFallback: f.seFallback,
		Reverse:           f.reverse,
		TruncateLength:    f.truncate,
		Progress:          !f.noProgress,
	}
}

func (f *ingestFlags) openStreams() (*fastq.InputStreams, error) {
	if f.mates != "" {
		return fastq.NewPairedEndStreams(f.reads, f.mates)
	}
	return fastq.NewSingleEndStreams(f.reads)
}

// ingestAll runs one complete pass over the input and returns the
// populated collection and the reject log.
func (f *ingestFlags) ingestAll() (*collapse.Collection, []fastq.RejectEvent, error) {
	streams, err := f.openStreams()
	if err != nil {
		return nil, nil, err
	}
	defer streams.Close()

	coll := collapse.NewCollection()
	var rejects []fastq.RejectEvent
	if _, err := collapse.ReadRecords(coll, &rejects, streams, f.options(), 0); err != nil {
		return nil, nil, err
	}
	return coll, rejects, nil
}

func (f *ingestFlags) writeRejects(rejects []fastq.RejectEvent) error {
	if f.rejectsFile == "" {
		return nil
	}
	return collapse.WriteRejects(rejects, f.rejectsFile)
}
