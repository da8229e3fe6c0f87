package yaml

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
)

// JSONToYAML converts JSON bytes to YAML bytes.
func JSONToYAML(jsonBytes []byte) ([]byte, error) {
	var jsonObj interface{}
	if err := json.Unmarshal(jsonBytes, &jsonObj); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}

	yamlBytes, err := yaml.Marshal(jsonObj)
	if err != nil {
		return nil, fmt.Errorf("error converting to YAML: %w", err)
	}

	return yamlBytes, nil
}

// YAMLToJSON converts YAML bytes to JSON bytes. Because encoding/json
// marshals maps with sorted keys, the output is a canonical form of the
// document: two YAML files that differ only in key order or formatting
// produce identical JSON. Digest computation relies on this.
func YAMLToJSON(yamlBytes []byte) ([]byte, error) {
	var yamlObj interface{}
	if err := yaml.Unmarshal(yamlBytes, &yamlObj); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}

	jsonBytes, err := json.Marshal(yamlObj)
	if err != nil {
		return nil, fmt.Errorf("error converting to JSON: %w", err)
	}

	return jsonBytes, nil
}

// UnmarshalYAML parses YAML bytes into the provided object.
func UnmarshalYAML(yamlBytes []byte, obj interface{}) error {
	if err := yaml.Unmarshal(yamlBytes, obj); err != nil {
		return fmt.Errorf("error parsing YAML: %w", err)
	}
	return nil
}
