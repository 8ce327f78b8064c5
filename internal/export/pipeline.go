// Package export orchestrates one HTML-to-PDF export end to end: validate,
// compose, resolve layout, render, name and persist. The first failure
// short-circuits; no step is retried.
package export

import (
	"context"
	"fmt"
	"strings"

	"pdfexport/internal/compose"
	"pdfexport/internal/config"
	"pdfexport/internal/infra/cache"
	"pdfexport/internal/infra/logging"
	"pdfexport/internal/layout"
	"pdfexport/internal/store"
)

// Request carries one export invocation. HTML is required; everything else
// is optional.
type Request struct {
	HTML        string          `json:"html"`
	CSS         string          `json:"css,omitempty"`
	BaseName    string          `json:"filename,omitempty"`
	Description string          `json:"description,omitempty"`
	Options     *layout.Options `json:"options,omitempty"`
}

// Result is the success shape returned to callers.
type Result struct {
	Path     string `json:"path"`
	Filetype string `json:"filetype"`
	Filename string `json:"filename"`
	Filesize string `json:"filesize"`
}

// Failure is the failure shape. An invocation yields exactly one of Result
// or Failure, never both and never a bare error.
type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// FailureFrom converts any pipeline error into the failure shape.
func FailureFrom(err error) Failure {
	return Failure{Success: false, Error: err.Error()}
}

// Renderer turns a composed document and a resolved layout into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, doc string, d layout.Descriptor) ([]byte, error)
}

// Pipeline wires the export steps together.
type Pipeline struct {
	resolver    layout.Resolver
	renderer    Renderer
	store       *store.Store
	cache       *cache.PDFCache
	defaultBase string
}

// NewPipeline builds a Pipeline. pdfCache may be nil to disable caching.
func NewPipeline(cfg config.Config, renderer Renderer, st *store.Store, pdfCache *cache.PDFCache) *Pipeline {
	return &Pipeline{
		resolver:    layout.NewResolver(cfg.PDF),
		renderer:    renderer,
		store:       st,
		cache:       pdfCache,
		defaultBase: cfg.Export.DefaultBaseName,
	}
}

// Export runs one request through the pipeline. Every returned error wraps
// one of ErrValidation, ErrRender or ErrStorage.
func (p *Pipeline) Export(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.HTML) == "" {
		return Result{}, fmt.Errorf("%w: HTML content cannot be empty", ErrValidation)
	}

	doc := compose.Compose(req.HTML, req.CSS)
	desc := p.resolver.Resolve(req.Options)

	pdfBuf, err := p.render(ctx, doc, desc)
	if err != nil {
		logging.Error("PDF generation failed", "error", err.Error())
		return Result{}, fmt.Errorf("%w: %w", ErrRender, err)
	}

	baseName := req.BaseName
	if baseName == "" {
		baseName = p.defaultBase
	}
	filename := store.Filename(baseName)

	stored, err := p.store.Persist(pdfBuf, filename)
	if err != nil {
		logging.Error("PDF persistence failed", "error", err.Error())
		return Result{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	logging.Info("PDF generated", "filename", stored.Filename, "filesize", stored.Size)
	return Result{
		Path:     stored.Path,
		Filetype: "application/pdf",
		Filename: stored.Filename,
		Filesize: stored.Size,
	}, nil
}

// render serves from the cache when possible, rendering and filling the
// cache otherwise.
func (p *Pipeline) render(ctx context.Context, doc string, desc layout.Descriptor) ([]byte, error) {
	key := cache.Key(doc, desc)
	if data, ok := p.cache.Get(ctx, key); ok {
		return data, nil
	}

	pdfBuf, err := p.renderer.Render(ctx, doc, desc)
	if err != nil {
		return nil, err
	}

	p.cache.Set(ctx, key, pdfBuf)
	return pdfBuf, nil
}
