package jobconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrDuplicateName is returned by Load when two job-config files declare the
// same job name.
var ErrDuplicateName = errors.New("duplicate job name")

const (
	configFileSuffix      = ".config.toml"
	directoryPlaceholder  = "${CONFIGURATION_FILE_DIRECTORY}"
)

// Load recursively walks root and parses every regular file whose name ends
// in ".config.toml" into a JobConfig. The placeholder token
// "${CONFIGURATION_FILE_DIRECTORY}" is substituted, in the file's raw text,
// with that file's absolute parent directory before parsing.
//
// Load fails the whole operation if any file cannot be read, cannot be
// parsed, or would introduce a duplicate job name.
func Load(root string) ([]JobConfig, error) {
	var jobs []JobConfig
	seen := make(map[string]string) // name -> source path, for error messages

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), configFileSuffix) {
			return nil
		}

		job, err := loadOne(path)
		if err != nil {
			return fmt.Errorf("loading job config %s: %w", path, err)
		}

		if prior, ok := seen[job.Name]; ok {
			return fmt.Errorf("%w: %q declared in both %s and %s", ErrDuplicateName, job.Name, prior, path)
		}
		seen[job.Name] = path

		jobs = append(jobs, job)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return jobs, nil
}

func loadOne(path string) (JobConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return JobConfig{}, fmt.Errorf("reading file: %w", err)
	}

	absDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return JobConfig{}, fmt.Errorf("resolving parent directory: %w", err)
	}

	substituted := strings.ReplaceAll(string(raw), directoryPlaceholder, absDir)

	var job JobConfig
	if _, err := toml.Decode(substituted, &job); err != nil {
		return JobConfig{}, fmt.Errorf("parsing toml: %w", err)
	}

	if job.Name == "" {
		return JobConfig{}, fmt.Errorf("missing required field: name")
	}
	if job.PathToExecutable == "" {
		return JobConfig{}, fmt.Errorf("missing required field: path_to_executable")
	}
	if job.CronString == "" {
		return JobConfig{}, fmt.Errorf("missing required field: cron_string")
	}

	job.SourcePath = path
	return job, nil
}
