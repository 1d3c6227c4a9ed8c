package secret

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Properties is a process-level key/value store used as the fallback source
// for secrets that are not present in the environment.
type Properties struct {
	mu     sync.RWMutex
	values map[string]string
}

// DefaultProperties is the process-wide property store.
var DefaultProperties = NewProperties()

// NewProperties creates an empty property store.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]string)}
}

// Set stores a property. Keys are trimmed; an empty key is ignored.
func (p *Properties) Set(key, value string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	p.mu.Lock()
	p.values[key] = value
	p.mu.Unlock()
}

// Get returns a property and whether it was present.
func (p *Properties) Get(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

// Delete removes a property.
func (p *Properties) Delete(key string) {
	p.mu.Lock()
	delete(p.values, key)
	p.mu.Unlock()
}

// Keys returns the stored keys in sorted order.
func (p *Properties) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadYAML merges properties from a YAML document. Nested mappings are
// flattened with dots, so
//
//	agent:
//	  jwt:
//	    secret: x
//
// becomes "agent.jwt.secret".
func (p *Properties) LoadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("secret: read properties: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("secret: parse properties %s: %w", path, err)
	}

	flat := make(map[string]string)
	flatten("", doc, flat)

	p.mu.Lock()
	defer p.mu.Unlock()
	for k, v := range flat {
		p.values[k] = v
	}
	return nil
}

// LoadDotenv merges properties from a .env file without touching the
// process environment.
func (p *Properties) LoadDotenv(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("secret: read dotenv %s: %w", path, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for k, v := range values {
		p.values[k] = v
	}
	return nil
}

// LoadFile dispatches on extension: .yaml/.yml are YAML, anything else is
// read as a dotenv file.
func (p *Properties) LoadFile(path string) error {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return p.LoadYAML(path)
	}
	return p.LoadDotenv(path)
}

func flatten(prefix string, v any, out map[string]string) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flatten(joinKey(prefix, k), child, out)
		}
	case nil:
		if prefix != "" {
			out[prefix] = ""
		}
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprint(val)
		}
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
