// Package circuit reads BBP circuits: the BlueConfig that describes them and
// the target files that group their cells.
package circuit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigFileName is the BlueConfig looked up inside a circuit directory.
const DefaultConfigFileName = "CircuitConfig"

// StartTargetFile lives in the CircuitPath directory of every circuit.
const StartTargetFile = "start.target"

// ErrNoRunSection is returned for a BlueConfig without a "Run" section.
var ErrNoRunSection = errors.New("blue config has no Run section")

// Circuit is an opened circuit.
type Circuit struct {
	// ConfigPath is the BlueConfig that was read.
	ConfigPath string
	// ModTime is the BlueConfig modification time, used as a cache version.
	ModTime time.Time
	Config  *BlueConfig
}

// Locate returns the BlueConfig path for path and its file info. A directory
// resolves to the configFileName file inside it.
func Locate(path, configFileName string) (string, os.FileInfo, error) {
	if configFileName == "" {
		configFileName = DefaultConfigFileName
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", nil, err
	}
	if info.IsDir() {
		path = filepath.Join(path, configFileName)
		if info, err = os.Stat(path); err != nil {
			return "", nil, err
		}
	}
	if !info.Mode().IsRegular() {
		return "", nil, fmt.Errorf("%s is not a regular file", path)
	}
	return path, info, nil
}

// Open parses the BlueConfig at path (or inside path when it is a directory).
func Open(path, configFileName string) (*Circuit, error) {
	configPath, info, err := Locate(path, configFileName)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := ParseBlueConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	if cfg.Run() == nil {
		return nil, fmt.Errorf("%s: %w", configPath, ErrNoRunSection)
	}

	return &Circuit{
		ConfigPath: configPath,
		ModTime:    info.ModTime(),
		Config:     cfg,
	}, nil
}

// TargetFiles returns the target files of the circuit in load order:
// CircuitPath/start.target first, then the optional user TargetFile.
// Relative paths are taken from the BlueConfig directory.
func (c *Circuit) TargetFiles() []string {
	run := c.Config.Run()
	base := filepath.Dir(c.ConfigPath)

	circuitPath := run.Get("CircuitPath")
	if circuitPath == "" {
		circuitPath = base
	}
	files := []string{filepath.Join(c.abs(circuitPath, base), StartTargetFile)}

	if userTargets := run.Get("TargetFile"); userTargets != "" {
		files = append(files, c.abs(userTargets, base))
	}
	return files
}

func (c *Circuit) abs(p, base string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Targets loads and merges every target file. User targets override
// start targets with the same name.
func (c *Circuit) Targets() (*TargetSet, error) {
	set := NewTargetSet()
	for _, name := range c.TargetFiles() {
		ts, err := loadTargets(name)
		if err != nil {
			return nil, err
		}
		set.Merge(ts)
	}
	return set, nil
}

func loadTargets(name string) (*TargetSet, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ts, err := ParseTargets(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ts, nil
}
