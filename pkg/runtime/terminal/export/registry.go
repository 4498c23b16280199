package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry manages report sink factories by format name
type Registry interface {
	// Register adds a new sink factory
	Register(format string, factory SinkFactory) error
	// Create instantiates the sink for the specified format
	Create(format string) (Sink, error)
	// ListFormats returns the registered formats in alphabetical order
	ListFormats() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]SinkFactory
}

// NewRegistry creates an empty sink registry
func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]SinkFactory),
	}
}

// DefaultRegistry returns a registry holding every built-in format
func DefaultRegistry() Registry {
	r := NewRegistry()
	for format, factory := range map[string]SinkFactory{
		FormatTable: func() Sink { return NewTableSink(DefaultTableConfig()) },
		FormatCSV:   func() Sink { return CSVSink{} },
		FormatJSON:  func() Sink { return JSONSink{Indent: "  "} },
		FormatXLSX:  func() Sink { return XLSXSink{} },
		FormatPDF:   func() Sink { return PDFSink{} },
	} {
		// built-in names are distinct and non-empty
		_ = r.Register(format, factory)
	}
	return r
}

func (r *registry) Register(format string, factory SinkFactory) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return fmt.Errorf("format name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[format]; exists {
		return fmt.Errorf("format %q is already registered", format)
	}

	r.factories[format] = factory
	return nil
}

func (r *registry) Create(format string) (Sink, error) {
	r.mu.RLock()
	factory, exists := r.factories[strings.ToLower(strings.TrimSpace(format))]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("format %q is not registered", format)
	}

	return factory(), nil
}

func (r *registry) ListFormats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.factories))
	for format := range r.factories {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// FormatForPath infers the output format from a file extension. Paths
// without a recognised extension fall back to the table format.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	case ".xlsx":
		return FormatXLSX
	case ".pdf":
		return FormatPDF
	}
	return FormatTable
}
