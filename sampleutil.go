package cachesim

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

type (
	// SampleCase is one (config, trace, expected output) triple discovered
	// under a sample directory. See SampleCases for the layout.
	SampleCase struct {
		Config string
		Trace  string
		Output string
	}
)

var sampleOutputPattern = regexp.MustCompile(`^output-([0-9a-zA-Z_]+)-([0-9a-zA-Z_]+)\.json$`)

// SampleCases discovers conformance cases under root, which must contain
// sample-inputs, sample-outputs, and trace-files directories. Each file in
// sample-outputs named output-<trace>-<config>.json yields a case pairing
// trace-files/<trace>.out with sample-inputs/<config>.json. Cases are
// returned sorted by output file name for deterministic iteration.
func SampleCases(root string) ([]SampleCase, error) {
	entries, err := os.ReadDir(filepath.Join(root, `sample-outputs`))
	if err != nil {
		return nil, fmt.Errorf(`cachesim: couldn't read the sample outputs directory: %w`, err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && sampleOutputPattern.MatchString(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	cases := make([]SampleCase, 0, len(names))
	for _, name := range names {
		tokens := sampleOutputPattern.FindStringSubmatch(name)
		cases = append(cases, SampleCase{
			Config: filepath.Join(root, `sample-inputs`, tokens[2]+`.json`),
			Trace:  filepath.Join(root, `trace-files`, tokens[1]+`.out`),
			Output: filepath.Join(root, `sample-outputs`, name),
		})
	}
	return cases, nil
}
