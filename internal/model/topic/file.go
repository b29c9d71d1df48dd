package topic

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type corpusFile struct {
	Categories []Group `yaml:"categories"`
}

// Decode reads a YAML corpus document:
//
//	categories:
//	  - name: general
//	    topics:
//	      - "..."
func Decode(r io.Reader) (*Corpus, error) {
	var doc corpusFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	return NewCorpus(doc.Categories)
}

// LoadFile reads a corpus from a YAML file.
func LoadFile(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}
	corpus, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return corpus, nil
}
