package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemas compiles each Schema once per process.
var schemas = &schemaCache{compiled: make(map[string]*jsonschema.Schema)}

type schemaCache struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

func (c *schemaCache) get(s *Schema) (*jsonschema.Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cs, ok := c.compiled[s.Name]; ok {
		return cs, nil
	}

	// The compiler wants decoded JSON values, not Go maps of arbitrary types.
	raw, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("encode schema %q: %w", s.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode schema %q: %w", s.Name, err)
	}

	url := "mem://schemas/" + s.Name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", s.Name, err)
	}
	cs, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", s.Name, err)
	}
	c.compiled[s.Name] = cs
	return cs, nil
}

// conform checks a structured reply against s.
func conform(provider string, s *Schema, content json.RawMessage) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(content))
	if err != nil {
		return invalidResponse(provider, content, "reply is not JSON: %w", err)
	}
	cs, err := schemas.get(s)
	if err != nil {
		return invalidResponse(provider, content, "%w", err)
	}
	if err := cs.Validate(doc); err != nil {
		return invalidResponse(provider, content, "reply does not match %s: %w", s.Name, err)
	}
	return nil
}
