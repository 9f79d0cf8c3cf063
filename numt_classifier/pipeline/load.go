package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"fortio.org/safecast"

	"onsm/numt_classifier/common"
	"onsm/numt_classifier/config"
	"onsm/numt_classifier/io"
	"onsm/numt_classifier/metrics"
	"onsm/numt_classifier/pairing"
)

// Paths lists the run's input and output locations. Empty optional paths are skipped.
type Paths struct {
	MitoToNuc   string // PAF, mito contigs as query
	NucToMito   string // PAF, nuclear contigs as query
	Support     string // read-support TSV
	NuclearFai  string // optional .fai of the nuclear assembly
	MitoFai     string // optional .fai of the mito assembly
	ConfigFile  string // recorded in the manifest only
	OutDir      string
	MetricsFile string
}

// inputs is everything loaded before pairing.
type inputs struct {
	pairing   pairing.Input
	nucFai    map[string]int
	mitoFai   map[string]int
	malformed int
}

func logRejects(log *slog.Logger, source string, rejects []error) {
	for _, err := range rejects {
		var recErr *common.RecordError
		if errors.As(err, &recErr) {
			log.Warn("skipping malformed record", "source", source, "line", recErr.Line, "field", recErr.Field, "reason", recErr.Reason)
			continue
		}
		log.Warn("skipping malformed record", "source", source, "error", err)
	}
}

// loadAlignments reads both PAF files and the optional .fai indexes.
func loadAlignments(log *slog.Logger, p Paths, m *metrics.Run) (inputs, error) {
	var in inputs
	for _, side := range []struct {
		path string
		dir  common.Direction
		dst  *[]common.AlignmentRecord
	}{
		{p.MitoToNuc, common.MitoToNuclear, &in.pairing.MitoToNuc},
		{p.NucToMito, common.NuclearToMito, &in.pairing.NucToMito},
	} {
		if side.path == "" {
			return inputs{}, common.ConfigError("missing %s alignment file", side.dir)
		}
		recs, rejects, err := io.ReadPAF(side.path)
		if err != nil {
			return inputs{}, fmt.Errorf("read %s alignments: %w", side.dir, err)
		}
		logRejects(log, side.path, rejects)
		m.Records(side.dir.String(), "parsed", len(recs))
		m.Records(side.dir.String(), "malformed", len(rejects))
		in.malformed += len(rejects)
		*side.dst = recs
		log.Info("alignments loaded", "direction", side.dir.String(), "records", len(recs), "malformed", len(rejects))
	}

	in.pairing.ContigLengths = map[string]int{}
	for _, fai := range []struct {
		path string
		dst  *map[string]int
	}{{p.NuclearFai, &in.nucFai}, {p.MitoFai, &in.mitoFai}} {
		if fai.path == "" {
			continue
		}
		lengths, err := io.ReadContigLengths(fai.path)
		if err != nil {
			return inputs{}, err
		}
		*fai.dst = lengths
		maps.Copy(in.pairing.ContigLengths, lengths)
	}
	return in, nil
}

// sumLengths totals an index's contig lengths.
func sumLengths(lengths map[string]int) (uint64, error) {
	var total uint64
	for name, n := range lengths {
		v, err := safecast.Conv[uint64](n)
		if err != nil {
			return 0, fmt.Errorf("contig %s length: %w", name, err)
		}
		total += v
	}
	return total, nil
}

// resolveTotals fills assembly sizes from the .fai indexes when the configuration does
// not give them, then fails with ErrInputMismatch if either is still unknown.
func resolveTotals(cfg config.Summary, in inputs) (config.Summary, error) {
	var err error
	if cfg.NuclearBPTotal == 0 && in.nucFai != nil {
		if cfg.NuclearBPTotal, err = sumLengths(in.nucFai); err != nil {
			return cfg, err
		}
	}
	if cfg.MitoBPTotal == 0 && in.mitoFai != nil {
		if cfg.MitoBPTotal, err = sumLengths(in.mitoFai); err != nil {
			return cfg, err
		}
	}
	if cfg.NuclearBPTotal == 0 {
		return cfg, common.InputMismatchError("nuclear assembly size unknown: set nuclear_bp_total or pass --nuclear-fai")
	}
	if cfg.MitoBPTotal == 0 {
		return cfg, common.InputMismatchError("mitochondrial assembly size unknown: set mito_bp_total or pass --mito-fai")
	}
	return cfg, nil
}

// loadSupport reads the read-support TSV. A missing path yields an empty file, so
// every ratio is undefined.
func loadSupport(log *slog.Logger, path string) (io.SupportFile, error) {
	if path == "" {
		log.Warn("no read-support file given; depth and span evidence will be missing")
		return io.SupportFile{}, nil
	}
	file, rejects, err := io.ReadSupport(path)
	if err != nil {
		return io.SupportFile{}, fmt.Errorf("read support: %w", err)
	}
	logRejects(log, path, rejects)
	log.Info("read support loaded", "rows", len(file.Rows), "malformed", len(rejects))
	return file, nil
}
