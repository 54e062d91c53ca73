package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/openal-orbis/oobuild/internal/artifact"
)

// Build directory layout:
//
//	<build>/
//	  .build.json                 # record of the last successful build
//	  <dir>/<source>.o            # one object per source, mirroring the tree
//	  <name>.elf .oelf .prx .a .so
//	  <stub>.c <stub>.o           # generated stub source and object
//
// The record is informational. Every build deletes the directory first, so
// nothing in it is ever trusted to skip work.
const recordFile = ".build.json"

// Record describes one successful build.
type Record struct {
	Name      string       `json:"name"`
	Artifacts artifact.Set `json:"artifacts"`
	Objects   []string     `json:"objects"`
	Symbols   []string     `json:"symbols"`
	StartTime time.Time    `json:"start_time"`
	BuildTime time.Time    `json:"build_time"`
}

// LoadRecord reads the record left in buildDir by the last successful build.
func LoadRecord(buildDir string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(buildDir, recordFile))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveRecord writes rec into buildDir.
func SaveRecord(buildDir string, rec *Record) error {
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(buildDir, recordFile), data, 0o644)
}
