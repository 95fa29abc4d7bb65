package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// loadComplianceCorpus resolves the config corpus for a compliance-check
// job from parameters.inputs_path (a JSON file: device-id -> config text)
// or parameters.inputs (an inline map), per SPEC_FULL.md §4.E / spec §4.E
// item 3. A path-traversal check on inputs_path rejects any ".." path
// component, preserved conservatively per DESIGN.md Open Question 1.
func loadComplianceCorpus(parameters map[string]interface{}) (map[string]string, error) {
	if raw, ok := parameters["inputs_path"]; ok {
		path, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("engine: parameters.inputs_path must be a string")
		}
		if hasParentDirComponent(path) {
			return nil, fmt.Errorf("engine: parameters.inputs_path must not contain a parent-directory component: %s", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("engine: reading inputs_path %s: %w", path, err)
		}
		var corpus map[string]string
		if err := json.Unmarshal(data, &corpus); err != nil {
			return nil, fmt.Errorf("engine: parsing inputs_path %s: %w", path, err)
		}
		return corpus, nil
	}

	if raw, ok := parameters["inputs"]; ok {
		var corpus map[string]string
		if err := mapstructure.Decode(raw, &corpus); err != nil {
			return nil, fmt.Errorf("engine: decoding parameters.inputs: %w", err)
		}
		return corpus, nil
	}

	return map[string]string{}, nil
}

func hasParentDirComponent(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
