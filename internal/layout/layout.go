// Package layout normalizes caller-supplied render options into the fully
// defaulted page-layout descriptor handed to the render engine.
package layout

import (
	"strconv"
	"strings"

	"pdfexport/internal/config"
)

// PaperSize holds portrait page dimensions in inches.
type PaperSize struct {
	Name   string
	Width  float64
	Height float64
}

// PaperSizes lists the supported page formats.
var PaperSizes = map[string]PaperSize{
	"A4":      {Name: "A4", Width: 8.27, Height: 11.69},
	"LETTER":  {Name: "Letter", Width: 8.5, Height: 11},
	"LEGAL":   {Name: "Legal", Width: 8.5, Height: 14},
	"TABLOID": {Name: "Tabloid", Width: 11, Height: 17},
}

// Margin holds per-side lengths as strings, e.g. "20mm" or "0.5in".
type Margin struct {
	Top    string `json:"top"`
	Right  string `json:"right"`
	Bottom string `json:"bottom"`
	Left   string `json:"left"`
}

// Options is the loosely-typed configuration surface accepted from callers.
// Every field is optional; omitted fields fall back to defaults and no value
// is ever rejected.
type Options struct {
	Format              string `json:"format"`
	Orientation         string `json:"orientation"`
	PrintBackground     *bool  `json:"printBackground"`
	Margin              Margin `json:"margin"`
	DisplayHeaderFooter *bool  `json:"displayHeaderFooter"`
	HeaderTemplate      string `json:"headerTemplate"`
	FooterTemplate      string `json:"footerTemplate"`
}

// Descriptor is the resolved page layout: no optional fields left, ready for
// the engine.
type Descriptor struct {
	Paper               PaperSize
	Landscape           bool
	PrintBackground     bool
	Margin              Margin
	DisplayHeaderFooter bool
	HeaderTemplate      string
	FooterTemplate      string
}

// Resolver applies defaults and the configured footer policy.
type Resolver struct {
	DefaultFormat string
	// Policy selects the permissive or enforced footer variant.
	Policy     string
	Disclaimer string
}

// NewResolver builds a Resolver from the process configuration.
func NewResolver(cfg config.PDFConfig) Resolver {
	return Resolver{
		DefaultFormat: cfg.DefaultFormat,
		Policy:        cfg.FooterPolicy,
		Disclaimer:    cfg.Disclaimer,
	}
}

// Resolve maps opts to a concrete descriptor. A nil opts yields the full
// default layout. Unknown format or orientation values fall back to the
// defaults rather than failing the request.
func (r Resolver) Resolve(opts *Options) Descriptor {
	if opts == nil {
		opts = &Options{}
	}

	enforced := r.Policy == config.FooterPolicyEnforced

	d := Descriptor{
		Paper:           r.paper(opts.Format),
		Landscape:       strings.EqualFold(opts.Orientation, "landscape"),
		PrintBackground: true,
		Margin:          defaultMargin(enforced),
		HeaderTemplate:  opts.HeaderTemplate,
		FooterTemplate:  opts.FooterTemplate,
	}
	if opts.PrintBackground != nil {
		d.PrintBackground = *opts.PrintBackground
	}
	if opts.Margin.Top != "" {
		d.Margin.Top = opts.Margin.Top
	}
	if opts.Margin.Right != "" {
		d.Margin.Right = opts.Margin.Right
	}
	if opts.Margin.Bottom != "" {
		d.Margin.Bottom = opts.Margin.Bottom
	}
	if opts.Margin.Left != "" {
		d.Margin.Left = opts.Margin.Left
	}

	if enforced {
		// The disclaimer rides along regardless of what the caller asked for.
		d.DisplayHeaderFooter = true
		d.FooterTemplate = opts.FooterTemplate + r.Disclaimer
	} else if opts.DisplayHeaderFooter != nil {
		d.DisplayHeaderFooter = *opts.DisplayHeaderFooter
	}

	return d
}

func (r Resolver) paper(format string) PaperSize {
	if p, ok := PaperSizes[strings.ToUpper(format)]; ok {
		return p
	}
	if p, ok := PaperSizes[strings.ToUpper(r.DefaultFormat)]; ok {
		return p
	}
	return PaperSizes["A4"]
}

func defaultMargin(enforced bool) Margin {
	m := Margin{Top: "20mm", Right: "20mm", Bottom: "20mm", Left: "20mm"}
	if enforced {
		// Extra room for the disclaimer footer.
		m.Bottom = "30mm"
	}
	return m
}

// MarginInches converts the descriptor's margin strings to inches for the
// engine. A side that fails to parse falls back to its default.
func (d Descriptor) MarginInches() (top, right, bottom, left float64) {
	def := defaultMargin(false)
	top = lengthOr(d.Margin.Top, def.Top)
	right = lengthOr(d.Margin.Right, def.Right)
	bottom = lengthOr(d.Margin.Bottom, def.Bottom)
	left = lengthOr(d.Margin.Left, def.Left)
	return
}

func lengthOr(s, fallback string) float64 {
	if v, err := ParseLength(s); err == nil {
		return v
	}
	v, _ := ParseLength(fallback)
	return v
}

// ParseLength parses a CSS-style length ("20mm", "2cm", "0.5in", "36pt",
// "96px") into inches. A bare number is taken as inches.
func ParseLength(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	factor := 1.0
	switch {
	case strings.HasSuffix(s, "mm"):
		s, factor = s[:len(s)-2], 1.0/25.4
	case strings.HasSuffix(s, "cm"):
		s, factor = s[:len(s)-2], 1.0/2.54
	case strings.HasSuffix(s, "in"):
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "pt"):
		s, factor = s[:len(s)-2], 1.0/72.0
	case strings.HasSuffix(s, "px"):
		s, factor = s[:len(s)-2], 1.0/96.0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return v * factor, nil
}
