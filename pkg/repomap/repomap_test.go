package repomap

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	rgerrors "github.com/matzehuels/rockgraph/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), DefaultFile), nil)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if m == nil || len(m) != 0 {
		t.Errorf("Load() = %v, want empty map", m)
	}
}

func TestLoadFormats(t *testing.T) {
	want := Map{
		"libfoo": "OrgA/repo1",
		"core":   "OrgB/core",
	}

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "repo_map.yaml",
			content: `libfoo:
  - OrgA/repo1
  - OrgA/repo1-mirror
core: OrgB/core
`,
		},
		{
			name:    "yml extension",
			file:    "repos.yml",
			content: "libfoo: [OrgA/repo1, OrgA/repo1-mirror]\ncore: OrgB/core\n",
		},
		{
			name: "toml",
			file: "repo_map.toml",
			content: `libfoo = ["OrgA/repo1", "OrgA/repo1-mirror"]
core = "OrgB/core"
`,
		},
		{
			name:    "json",
			file:    "repo_map.json",
			content: `{"libfoo": ["OrgA/repo1", "OrgA/repo1-mirror"], "core": "OrgB/core"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Load(writeFile(t, tt.file, tt.content), nil)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(m, want) {
				t.Errorf("Load() = %v, want %v", m, want)
			}
		})
	}
}

func TestLoadFirstEntryIsPrimary(t *testing.T) {
	path := writeFile(t, "repo_map.yaml", "libfoo: [\"OrgA/repo1\", \"OrgA/repo1-mirror\"]\n")
	m, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := m.Lookup("libfoo"); got != "OrgA/repo1" {
		t.Errorf("libfoo = %q, want OrgA/repo1", got)
	}
}

func TestLoadSkipsMalformedEntries(t *testing.T) {
	path := writeFile(t, "repo_map.yaml", `good: OrgA/repo1
empty: ""
emptylist: []
number: 42
nested:
  key: value
badfirst:
  - 7
  - OrgA/repo2
`)

	var warnings []string
	warn := func(format string, args ...any) { warnings = append(warnings, fmt.Sprintf(format, args...)) }

	m, err := Load(path, warn)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(m, Map{"good": "OrgA/repo1"}) {
		t.Errorf("Load() = %v", m)
	}
	if len(warnings) != 5 {
		t.Errorf("got %d warnings, want 5: %v", len(warnings), warnings)
	}
	for _, name := range []string{"empty", "emptylist", "number", "nested", "badfirst"} {
		found := false
		for _, w := range warnings {
			if strings.Contains(w, fmt.Sprintf("%q", name)) {
				found = true
			}
		}
		if !found {
			t.Errorf("no warning for entry %q", name)
		}
	}
}

func TestLoadRejectsReservedLabels(t *testing.T) {
	path := writeFile(t, "repo_map.yaml", `libfoo: OrgA/repo1
sneaky: external
lost: [" unknown ", OrgB/mirror]
`)

	var warnings []string
	warn := func(format string, args ...any) { warnings = append(warnings, fmt.Sprintf(format, args...)) }

	m, err := Load(path, warn)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(m, Map{"libfoo": "OrgA/repo1"}) {
		t.Errorf("Load() = %v", m)
	}
	if len(warnings) != 2 || !strings.Contains(strings.Join(warnings, "\n"), "reserved") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestLoadUndecodableFile(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{"repo_map.yaml", "libfoo: [unterminated\n"},
		{"repo_map.yaml", "- just\n- a list\n"},
		{"repo_map.toml", "libfoo = \n"},
		{"repo_map.json", "{not json"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			m, err := Load(writeFile(t, tt.file, tt.content), nil)
			if !rgerrors.Is(err, rgerrors.ErrCodeInvalidManifest) {
				t.Errorf("Load() error = %v, want %s", err, rgerrors.ErrCodeInvalidManifest)
			}
			if m == nil || len(m) != 0 {
				t.Errorf("Load() = %v, want empty map", m)
			}
		})
	}
}

func TestLoadDirectoryIsError(t *testing.T) {
	m, err := Load(t.TempDir(), nil)
	if err == nil {
		t.Error("Load(directory) should fail")
	}
	if len(m) != 0 {
		t.Errorf("Load(directory) = %v, want empty map", m)
	}
}

func TestMapRepos(t *testing.T) {
	m := Map{"a": "OrgB/x", "b": "OrgA/y", "c": "OrgB/x"}
	want := []string{"OrgA/y", "OrgB/x"}
	if got := m.Repos(); !reflect.DeepEqual(got, want) {
		t.Errorf("Repos() = %v, want %v", got, want)
	}
	if _, ok := m.Lookup("missing"); ok {
		t.Error("Lookup(missing) should report false")
	}
}
