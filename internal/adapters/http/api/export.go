package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/0xJagger/poc-geo-tier-list/pkg/metrics"
)

// Export artifacts.
const (
	ArtifactPropertyGraph = "property-graph"
	ArtifactEdits         = "edits"
)

// Format describes how an export artifact is encoded for download.
// Artifacts are produced as JSON; Transcode converts that JSON.
type Format struct {
	Name      string
	MIMEType  string
	Extension string
	Transcode func(doc []byte) ([]byte, error)
}

// Formats is a registry of export formats keyed by name.
type Formats map[string]Format

// DefaultFormats returns the JSON and YAML encodings. JSON is the default.
func DefaultFormats() Formats {
	f := Formats{}
	f.Register(Format{
		Name:      "json",
		MIMEType:  "application/json",
		Extension: "json",
		Transcode: func(doc []byte) ([]byte, error) { return doc, nil },
	})
	f.Register(Format{
		Name:      "yaml",
		MIMEType:  "application/yaml",
		Extension: "yaml",
		Transcode: jsonToYAML,
	})
	return f
}

// Register adds or replaces a format.
func (f Formats) Register(format Format) {
	f[format.Name] = format
}

// Names lists registered format names in sorted order.
func (f Formats) Names() []string {
	names := make([]string, 0, len(f))
	for n := range f {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func jsonToYAML(doc []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return out, nil
}

// ExportHandler serves downloadable artifacts.
type ExportHandler struct {
	graphs  GraphDependencies
	edits   EditDependencies
	formats Formats
}

// NewExportHandler creates a new export handler.
func NewExportHandler(graphs GraphDependencies, edits EditDependencies, formats Formats) *ExportHandler {
	return &ExportHandler{graphs: graphs, edits: edits, formats: formats}
}

// HandleExport handles GET /export/{artifact}?format= requests.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"

	name := r.URL.Query().Get("format")
	if name == "" {
		name = "json"
	}
	format, ok := h.formats[name]
	if !ok {
		writeFailure(w, WrapKind(op, ErrBadRequest, fmt.Errorf("unknown format %q; expected one of %s", name, strings.Join(h.formats.Names(), ", "))))
		return
	}

	artifact := r.PathValue("artifact")
	var (
		doc      []byte
		filename string
	)
	switch artifact {
	case ArtifactPropertyGraph:
		raw, err := h.graphs.PropertyGraph(r.Context()).MarshalDocument()
		if err != nil {
			writeFailure(w, Wrap(op, err))
			return
		}
		doc, filename = raw, "property-graph"
	case ArtifactEdits:
		b, ok := h.edits.PreparedBundle(r.Context())
		if !ok {
			writeFailure(w, WrapKind(op, ErrNotFound, fmt.Errorf("no prepared edits")))
			return
		}
		doc, filename = b.Document, slug(b.Name)
	default:
		writeFailure(w, WrapKind(op, ErrNotFound, fmt.Errorf("unknown artifact %q", artifact)))
		return
	}

	out, err := format.Transcode(doc)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	metrics.RecordExport(artifact, len(out))

	w.Header().Set("Content-Type", format.MIMEType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+"."+format.Extension))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// slug turns a bundle name into a file name stem.
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "edits"
	}
	return s
}
