// Package repomap loads the optional project-to-repository mapping used to
// group graph nodes by owning repository.
//
// The mapping file is a keyed document whose values are either a single
// repository label or an ordered list of labels. Only the first entry of a
// list is kept; it is the project's primary repository.
//
//	# repo_map.yaml
//	rocBLAS: ROCm/rocm-libraries
//	hip-clr:
//	  - ROCm/rocm-systems
//	  - ROCm/clr
//
// YAML, TOML and JSON documents are accepted, selected by file extension.
// The labels "external" and "unknown" are reserved for the graph builder and
// are rejected as repository values.
// The mapping is presentation-only: it never changes the dependency relation.
package repomap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/rockgraph/pkg/depgraph"
	rgerrors "github.com/matzehuels/rockgraph/pkg/errors"
)

// DefaultFile is the mapping file looked up relative to the working directory
// when no path is given.
const DefaultFile = "repo_map.yaml"

// Map associates a project name with its primary repository label.
type Map map[string]string

// Lookup returns the repository for name.
func (m Map) Lookup(name string) (string, bool) {
	repo, ok := m[name]
	return repo, ok
}

// Repos returns the distinct repository labels in sorted order.
func (m Map) Repos() []string {
	set := make(map[string]struct{}, len(m))
	for _, r := range m {
		set[r] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// Load reads the mapping at path.
//
// A missing file yields an empty map and no error. A file that cannot be read
// or decoded yields an empty map and an INVALID_MANIFEST error. Individual
// malformed entries are skipped and reported through warn, which may be nil.
func Load(path string, warn func(string, ...any)) (Map, error) {
	if warn == nil {
		warn = func(string, ...any) {}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Map{}, nil
		}
		return Map{}, rgerrors.Wrap(rgerrors.ErrCodeInvalidManifest, err, "read repository map %s", path)
	}

	raw, err := decode(path, data)
	if err != nil {
		return Map{}, rgerrors.Wrap(rgerrors.ErrCodeInvalidManifest, err, "decode repository map %s", path)
	}

	m := make(Map, len(raw))
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		repo, err := primary(raw[name])
		if err != nil {
			warn("skipping repository map entry %q: %v", name, err)
			continue
		}
		m[name] = repo
	}
	return m, nil
}

// decode parses data into a generic keyed document based on path's extension.
func decode(path string, data []byte) (map[string]any, error) {
	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, err
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// primary extracts the repository label from an entry value.
func primary(v any) (string, error) {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		switch s {
		case "":
			return "", errors.New("empty repository")
		}
		if depgraph.IsReservedLabel(s) {
			return "", fmt.Errorf("%q is a reserved label", s)
		}
		return s, nil
	case []any:
		if len(val) == 0 {
			return "", errors.New("empty repository list")
		}
		first, ok := val[0].(string)
		if !ok {
			return "", fmt.Errorf("first repository is %T, not a string", val[0])
		}
		return primary(first)
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
