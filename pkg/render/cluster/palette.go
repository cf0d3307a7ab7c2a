package cluster

import (
	"maps"
	"strings"

	"github.com/matzehuels/rockgraph/pkg/depgraph"
)

const (
	// FallbackColor fills containers of repositories without a palette entry,
	// including the "unknown" label.
	FallbackColor = "#d9d9d9"

	// ExternalColor fills the "external" container. It is always distinct
	// from FallbackColor.
	ExternalColor = "#a6a6a6"
)

// DefaultPalette holds fill colors for the repositories that make up a
// TheRock checkout.
var DefaultPalette = map[string]string{
	"ROCm/TheRock":              "#f4cccc",
	"ROCm/rocm-libraries":       "#cde4f7",
	"ROCm/rocm-systems":         "#d9ead3",
	"ROCm/llvm-project":         "#fff2cc",
	"ROCm/HIPIFY":               "#ead1dc",
	"ROCm/rocm-cmake":           "#d0e0e3",
	"ROCm/composable_kernel":    "#fce5cd",
	"ROCm/MIOpen":               "#d9d2e9",
	"ROCm/rccl":                 "#c9daf8",
	"ROCm/rocprofiler-sdk":      "#e6f2d0",
	"ROCm/amdsmi":               "#f9e0b0",
	"ROCm/half":                 "#e0f0f0",
	"ROCm/rocm_smi_lib":         "#f0e0f0",
	"ROCm/roctracer":            "#e8e8c8",
	"ROCm/rocm-core":            "#dcecc8",
	"ROCm/ROCR-Runtime":         "#c8e0ec",
	"ROCm/rocminfo":             "#ecdcc8",
	"ROCm/aqlprofile":           "#d8d8f0",
	"ROCm/rocm_bandwidth_test":  "#f0d8d8",
	"ROCm/rocm-install-scripts": "#d8f0d8",
}

// ColorFor returns the fill color for a repository label.
//
// The "external" label always maps to ExternalColor and "unknown" always to
// FallbackColor. Other labels are looked up in palette, then in
// DefaultPalette, and fall back to FallbackColor.
func ColorFor(label string, palette map[string]string) string {
	switch label {
	case depgraph.LabelExternal:
		return ExternalColor
	case depgraph.LabelUnknown:
		return FallbackColor
	}
	if c, ok := palette[label]; ok && c != "" {
		return c
	}
	if c, ok := DefaultPalette[label]; ok {
		return c
	}
	return FallbackColor
}

// MergePalette returns DefaultPalette overlaid with overrides. Entries for
// the external and unknown labels are ignored so they keep their fixed colors.
func MergePalette(overrides map[string]string) map[string]string {
	out := maps.Clone(DefaultPalette)
	for k, v := range overrides {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" || depgraph.IsReservedLabel(k) {
			continue
		}
		out[k] = v
	}
	return out
}
