package io

import (
	"fmt"
	"os"

	"github.com/biogo/hts/fai"
)

// ReadContigLengths returns contig name -> length from a samtools faidx index.
func ReadContigLengths(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	idx, err := fai.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("%s: read fasta index: %w", path, err)
	}
	lengths := make(map[string]int, len(idx))
	for name, rec := range idx {
		lengths[name] = rec.Length
	}
	return lengths, nil
}
