package registry

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/teamwork/pkg/domain"
)

// RoleFile is the YAML document accepted by Load.
//
//	roles:
//	  - kind: validator
//	    method_pattern: ^Validate
//	    params: state
//	    results: [error]
type RoleFile struct {
	Roles []domain.RoleDefinition `yaml:"roles"`
}

// Load decodes custom role definitions and defines them in r.
// It returns the handles of the roles it added.
func (r *Registry) Load(src io.Reader) ([]Handle, error) {
	var doc RoleFile
	dec := yaml.NewDecoder(src)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode role file: %w", err)
	}

	handles := make([]Handle, 0, len(doc.Roles))
	for _, def := range doc.Roles {
		h, err := r.DefineRole(def)
		if err != nil {
			return handles, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// LoadFile is Load for a file path.
func (r *Registry) LoadFile(path string) ([]Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open role file: %w", err)
	}
	defer f.Close()
	return r.Load(f)
}
