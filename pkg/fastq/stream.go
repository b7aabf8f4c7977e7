package fastq

import (
	"fmt"
	"io"
	"os"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
)

// mateStream wraps a fastx reader for one mate file with one record of
// lookahead so stream exhaustion can be queried before reading.
type mateStream struct {
	path string
	r    *fastx.Reader
	next *fastx.Record
	err  error
}

func openMateStream(path string) (*mateStream, error) {
	r, err := fastx.NewReader(seq.DNAredundant, path, fastx.DefaultIDRegexp)
	if err != nil {
		return nil, fmt.Errorf("open FASTQ file %s: %w", path, err)
	}
	ms := &mateStream{path: path, r: r}
	ms.advance()
	return ms, nil
}

func (m *mateStream) advance() {
	rec, err := m.r.Read()
	if err == io.EOF {
		m.next = nil
		return
	}
	if err != nil {
		m.next = nil
		m.err = fmt.Errorf("could not parse FASTQ file %s: %w", m.path, err)
		return
	}
	// The fastx reader reuses the record's buffers on the next Read.
	m.next = rec.Clone()
}

func (m *mateStream) atEnd() bool { return m.next == nil && m.err == nil }

func (m *mateStream) read() (id string, sq, qual []byte, err error) {
	if m.err != nil {
		return "", nil, nil, m.err
	}
	if m.next == nil {
		return "", nil, nil, fmt.Errorf("read past end of FASTQ file %s", m.path)
	}
	rec := m.next
	if len(rec.Seq.Qual) != len(rec.Seq.Seq) {
		return "", nil, nil, fmt.Errorf("could not parse FASTQ file %s: record %s has no quality values", m.path, rec.Name)
	}
	id, sq, qual = string(rec.Name), rec.Seq.Seq, rec.Seq.Qual
	m.advance()
	return id, sq, qual, nil
}

// fastx.Reader.Close returns nothing; surface a nil error to keep the
// io.Closer-shaped call sites uniform.
func (m *mateStream) close() error {
	m.r.Close()
	return nil
}

// InputStreams is the input-stream abstraction the ingestion loop reads
// from: one FASTQ stream for single-end data, two synchronized streams for
// paired-end data. TotalInBytes is the summed on-disk size of the inputs,
// used for progress estimation only (0 when reading from stdin).
type InputStreams struct {
	fw  *mateStream
	rev *mateStream

	TotalInBytes int64
}

// NewSingleEndStreams opens a single-end input stream. Gzip input and "-"
// for stdin are handled transparently.
func NewSingleEndStreams(path string) (*InputStreams, error) {
	fw, err := openMateStream(path)
	if err != nil {
		return nil, err
	}
	return &InputStreams{fw: fw, TotalInBytes: fileSize(path)}, nil
}

// NewPairedEndStreams opens a pair of synchronized input streams for the
// forward and reverse mate files.
func NewPairedEndStreams(fwPath, revPath string) (*InputStreams, error) {
	fw, err := openMateStream(fwPath)
	if err != nil {
		return nil, err
	}
	rev, err := openMateStream(revPath)
	if err != nil {
		fw.close()
		return nil, err
	}
	return &InputStreams{fw: fw, rev: rev, TotalInBytes: fileSize(fwPath) + fileSize(revPath)}, nil
}

// Paired reports whether the streams deliver paired-end records.
func (s *InputStreams) Paired() bool { return s.rev != nil }

// AtEnd reports whether any of the underlying streams is exhausted.
func (s *InputStreams) AtEnd() bool {
	if s.rev != nil && s.rev.atEnd() {
		return true
	}
	return s.fw.atEnd()
}

// Read fills rec with the next record. The record is fully reset first, so
// one Record can be reused across the whole pass. I/O and parse failures
// are fatal and carry the originating file path.
func (s *InputStreams) Read(rec *Record) error {
	*rec = Record{Paired: s.rev != nil}
	if s.rev != nil {
		_, sq, qual, err := s.rev.read()
		if err != nil {
			return err
		}
		rec.RevSeq, rec.RevQual = sq, qual
	}
	id, sq, qual, err := s.fw.read()
	if err != nil {
		return err
	}
	rec.ID, rec.Seq, rec.Qual = id, sq, qual
	return nil
}

// Close closes all underlying streams.
func (s *InputStreams) Close() error {
	err := s.fw.close()
	if s.rev != nil {
		if cerr := s.rev.close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func fileSize(path string) int64 {
	if path == "-" {
		return 0
	}
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
