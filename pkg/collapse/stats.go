package collapse

import "sort"

// BarcodeCount is the per-barcode slice of a barcode statistics report.
type BarcodeCount struct {
	Barcode     string
	Reads       uint64
	UniqueReads uint64
}

// BarcodeStats summarizes a completed collection per barcode: total reads
// (summed ID-set sizes) and unique reads (key tuples with at least one
// contributing read). Barcodes without any reads are omitted.
type BarcodeStats struct {
	Barcodes         []BarcodeCount
	TotalReads       uint64
	TotalUniqueReads uint64
}

// BarcodeStats reduces the collection into a per-barcode report. Barcodes
// are emitted in lexicographic order. The collection must not be mutated
// concurrently.
func (c *Collection) BarcodeStats() BarcodeStats {
	barcodes := make([]string, 0, len(c.index))
	for barcode := range c.index {
		barcodes = append(barcodes, barcode)
	}
	sort.Strings(barcodes)

	var stats BarcodeStats
	for _, barcode := range barcodes {
		var reads, unique uint64
		for _, mateMap := range c.index[barcode] {
			for _, pos := range mateMap {
				n := uint64(c.At(pos).Count())
				reads += n
				if n > 0 {
					unique++
				}
			}
		}
		if reads == 0 {
			continue
		}
		stats.Barcodes = append(stats.Barcodes, BarcodeCount{Barcode: barcode, Reads: reads, UniqueReads: unique})
		stats.TotalReads += reads
		stats.TotalUniqueReads += unique
	}
	return stats
}
