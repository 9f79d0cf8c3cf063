package pipeline

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	stdio "io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"onsm/numt_classifier/config"
)

// ManifestFile is the name of the run manifest inside the output directory.
const ManifestFile = "run_manifest.yaml"

// InputFile identifies one input by path, size and checksum.
type InputFile struct {
	Role  string `yaml:"role"`
	Path  string `yaml:"path"`
	Bytes int64  `yaml:"bytes"`
	MD5   string `yaml:"md5"`
}

// Manifest records what a run consumed and produced, so results can be traced back.
type Manifest struct {
	Tool      string         `yaml:"tool"`
	Version   string         `yaml:"version"`
	Command   string         `yaml:"command"`
	StartedAt time.Time      `yaml:"started_at"`
	Elapsed   string         `yaml:"elapsed"`
	Inputs    []InputFile    `yaml:"inputs"`
	Config    config.Config  `yaml:"config"`
	Counts    map[string]int `yaml:"counts"`
	Outputs   []string       `yaml:"outputs"`
}

// fileMD5 streams path through MD5.
func fileMD5(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := md5.New()
	n, err := stdio.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// describeInputs checksums every non-empty path; roles keep their given order.
func describeInputs(roles [][2]string) ([]InputFile, error) {
	var out []InputFile
	for _, rp := range roles {
		role, path := rp[0], rp[1]
		if path == "" {
			continue
		}
		sum, n, err := fileMD5(path)
		if err != nil {
			return nil, err
		}
		out = append(out, InputFile{Role: role, Path: path, Bytes: n, MD5: sum})
	}
	return out, nil
}

func (p Paths) roles() [][2]string {
	return [][2]string{
		{"mito_to_nuc_paf", p.MitoToNuc},
		{"nuc_to_mito_paf", p.NucToMito},
		{"read_support", p.Support},
		{"nuclear_fai", p.NuclearFai},
		{"mito_fai", p.MitoFai},
		{"config", p.ConfigFile},
	}
}

// writeManifest renders m as YAML.
func writeManifest(w stdio.Writer, m Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}

// ReadManifest loads a manifest written by an earlier run.
func ReadManifest(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
