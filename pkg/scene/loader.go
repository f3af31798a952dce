package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader reads scene files below a root directory and caches the parsed
// documents. A Loader is safe for concurrent use.
type Loader struct {
	root string

	mu    sync.Mutex
	cache map[string]*Document
}

func NewLoader(root string) *Loader {
	return &Loader{
		root:  root,
		cache: make(map[string]*Document),
	}
}

// Parse decodes and validates a scene document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not unmarshal scene yaml: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load returns the document stored at name, relative to the loader root. A
// missing extension defaults to ".yaml".
func (l *Loader) Load(name string) (*Document, error) {
	name = normalizeName(name)

	l.mu.Lock()
	doc, ok := l.cache[name]
	l.mu.Unlock()
	if ok {
		return doc, nil
	}

	data, err := os.ReadFile(filepath.Join(l.root, name))
	if err != nil {
		return nil, fmt.Errorf("could not read scene file: %w", err)
	}
	doc, err = Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}

	l.mu.Lock()
	if cached, ok := l.cache[name]; ok {
		doc = cached
	} else {
		l.cache[name] = doc
	}
	l.mu.Unlock()
	return doc, nil
}

func normalizeName(name string) string {
	name = filepath.ToSlash(filepath.Clean(name))
	if filepath.Ext(name) == "" {
		name += ".yaml"
	}
	return name
}
