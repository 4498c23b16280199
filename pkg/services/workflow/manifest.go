package workflow

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest lists the jobs of a batch run.
type Manifest struct {
	Jobs []Job `yaml:"jobs"`
}

// LoadManifest reads a YAML manifest. Relative local paths are resolved
// against the manifest's directory.
func LoadManifest(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	m, err := ParseManifest(f)
	if err != nil {
		return Manifest{}, err
	}

	base := filepath.Dir(path)
	for i := range m.Jobs {
		job := &m.Jobs[i]
		job.Submission = resolve(base, job.Submission)
		job.Remittance = resolve(base, job.Remittance)
		for j := range job.Outputs {
			job.Outputs[j].Path = resolve(base, job.Outputs[j].Path)
		}
	}
	return m, nil
}

func ParseManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			return Manifest{}, fmt.Errorf("manifest is empty")
		}
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if len(m.Jobs) == 0 {
		return Manifest{}, fmt.Errorf("manifest has no jobs")
	}
	for i := range m.Jobs {
		job := &m.Jobs[i]
		if job.Name == "" {
			job.Name = fmt.Sprintf("job-%d", i+1)
		}
		if job.Submission == "" || job.Remittance == "" {
			return Manifest{}, fmt.Errorf("job %s: submission and remittance are required", job.Name)
		}
		for _, out := range job.Outputs {
			if out.Path == "" {
				return Manifest{}, fmt.Errorf("job %s: output path is required", job.Name)
			}
		}
	}
	return m, nil
}

func resolve(base, location string) string {
	if strings.Contains(location, "://") || filepath.IsAbs(location) {
		return location
	}
	return filepath.Join(base, location)
}
