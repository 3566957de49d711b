package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Topics maps a topic name such as "nlp" to the course codes that cover it.
type Topics map[string][]string

// DefaultTopics returns the built-in topic course sets.
func DefaultTopics() Topics {
	topics, err := parseTopics(defaultTopicsYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded topics are invalid: %v", err))
	}
	return topics
}

// LoadTopics reads topic course sets from a YAML file.
func LoadTopics(path string) (Topics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topics file: %w", err)
	}
	return parseTopics(data)
}

func parseTopics(data []byte) (Topics, error) {
	var topics Topics
	if err := yaml.Unmarshal(data, &topics); err != nil {
		return nil, fmt.Errorf("failed to parse topics: %w", err)
	}
	for name, codes := range topics {
		for i, code := range codes {
			codes[i] = normalizeCode(code)
		}
		topics[name] = codes
	}
	return topics, nil
}
