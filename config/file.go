package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"vault-gateway/gateway"

	"gopkg.in/yaml.v3"
)

// File é o formato do CONFIG_FILE:
//
//	identities:
//	  - abc
//	routes:
//	  - method: POST
//	    pattern: /vault
//	    max_rpm: 3
type File struct {
	Identities []string        `yaml:"identities"`
	Routes     []gateway.Route `yaml:"routes"`
}

func LoadFile(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config file: %w", err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	for _, rt := range f.Routes {
		if err := rt.Validate(); err != nil {
			return File{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}
	return f, nil
}
