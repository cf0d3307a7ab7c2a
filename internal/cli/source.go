package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rockgraph/pkg/extract"
)

// sourceFlags configure the CMake evaluator shared by graph and extract.
type sourceFlags struct {
	cmake      string
	workDir    string
	projectDir string
	defines    map[string]string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.cmake, "cmake", "", "cmake binary (default: $"+extract.CommandEnv+" or cmake)")
	cmd.Flags().StringVar(&f.workDir, "work-dir", "", "parent of the per-run evaluator directories (default: system temp dir)")
	cmd.Flags().StringVar(&f.projectDir, "cmake-project", "", "custom evaluator project instead of the built-in one")
	cmd.Flags().StringToStringVarP(&f.defines, "define", "D", nil, "extra cmake cache entries (NAME=VALUE)")
}

// cmakeSource builds the evaluator source. User defines are layered over
// the built-in ones.
func (f *sourceFlags) cmakeSource(logger *log.Logger) *extract.CMakeSource {
	defines := map[string]string{"THEROCK_AMDGPU_FAMILIES": extract.DefaultGPUFamilies}
	for k, v := range f.defines {
		defines[k] = v
	}
	src := &extract.CMakeSource{
		Command:    f.cmake,
		WorkDir:    f.workDir,
		ProjectDir: f.projectDir,
		Defines:    defines,
		Logger:     logger,
	}
	return src
}
