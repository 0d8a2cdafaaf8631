// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jupyter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

// ErrKernelSpecNotFound is returned when no search path directory
// contains the requested kernelspec.
var ErrKernelSpecNotFound = errors.New("kernelspec not found")

// KernelSpec describes how to launch a kernel.
type KernelSpec struct {
	// Name is the directory name the spec was found under.
	Name string `json:"-"`

	// ResourceDir is the directory holding kernel.json.
	ResourceDir string `json:"-"`

	Argv        []string          `json:"argv"`
	DisplayName string            `json:"display_name"`
	Language    string            `json:"language"`
	Env         map[string]string `json:"env,omitempty"`

	// InterruptMode is "signal" (default) or "message".
	InterruptMode string `json:"interrupt_mode,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// InterruptByMessage reports whether the kernel wants interrupts as
// interrupt_request messages on the control channel rather than
// SIGINT.
func (k *KernelSpec) InterruptByMessage() bool {
	return k.InterruptMode == "message"
}

// Command returns argv with {connection_file} and {resource_dir}
// substituted.
func (k *KernelSpec) Command(connectionFile string) []string {
	replacer := strings.NewReplacer(
		"{connection_file}", connectionFile,
		"{resource_dir}", k.ResourceDir,
	)
	command := make([]string, len(k.Argv))
	for index, argument := range k.Argv {
		command[index] = replacer.Replace(argument)
	}
	return command
}

// DefaultSearchPath returns the Jupyter data directories that hold
// kernelspecs, highest priority first: each entry of $JUPYTER_PATH,
// then $JUPYTER_DATA_DIR (or the per-user data directory), then the
// system directories.
func DefaultSearchPath() []string {
	var directories []string
	if jupyterPath := os.Getenv("JUPYTER_PATH"); jupyterPath != "" {
		for _, entry := range filepath.SplitList(jupyterPath) {
			if entry != "" {
				directories = append(directories, filepath.Join(entry, "kernels"))
			}
		}
	}
	if dataDir := os.Getenv("JUPYTER_DATA_DIR"); dataDir != "" {
		directories = append(directories, filepath.Join(dataDir, "kernels"))
	} else if home, err := os.UserHomeDir(); err == nil {
		directories = append(directories, filepath.Join(home, ".local", "share", "jupyter", "kernels"))
	}
	return append(directories,
		"/usr/local/share/jupyter/kernels",
		"/usr/share/jupyter/kernels",
	)
}

// FindKernelSpec returns the first kernelspec named name in
// searchPath. Names are matched case-insensitively, as Jupyter does.
func FindKernelSpec(name string, searchPath []string) (*KernelSpec, error) {
	if name == "" {
		return nil, fmt.Errorf("empty kernel name")
	}
	for _, directory := range searchPath {
		entries, err := os.ReadDir(directory)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || !strings.EqualFold(entry.Name(), name) {
				continue
			}
			spec, err := ReadKernelSpec(filepath.Join(directory, entry.Name()))
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			return spec, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (searched %s)", ErrKernelSpecNotFound, name, strings.Join(searchPath, ", "))
}

// ListKernelSpecs returns every kernelspec visible on searchPath,
// sorted by name. When a name appears in several directories the
// highest priority one wins. Unparseable specs are skipped.
func ListKernelSpecs(searchPath []string) []*KernelSpec {
	found := make(map[string]*KernelSpec)
	for _, directory := range searchPath {
		entries, err := os.ReadDir(directory)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			key := strings.ToLower(entry.Name())
			if !entry.IsDir() || found[key] != nil {
				continue
			}
			spec, err := ReadKernelSpec(filepath.Join(directory, entry.Name()))
			if err != nil {
				continue
			}
			found[key] = spec
		}
	}

	specs := make([]*KernelSpec, 0, len(found))
	for _, spec := range found {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// ReadKernelSpec parses resourceDir/kernel.json.
func ReadKernelSpec(resourceDir string) (*KernelSpec, error) {
	path := filepath.Join(resourceDir, "kernel.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var spec KernelSpec
	if err := json.Unmarshal(jsonc.ToJSON(data), &spec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(spec.Argv) == 0 {
		return nil, fmt.Errorf("%s: argv is empty", path)
	}
	spec.Name = filepath.Base(resourceDir)
	spec.ResourceDir = resourceDir
	return &spec, nil
}
