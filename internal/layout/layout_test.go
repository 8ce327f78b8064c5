package layout

import (
	"math"
	"strings"
	"testing"

	"pdfexport/internal/config"
)

func permissiveResolver() Resolver {
	return Resolver{DefaultFormat: "A4", Policy: config.FooterPolicyPermissive}
}

func enforcedResolver() Resolver {
	return Resolver{DefaultFormat: "A4", Policy: config.FooterPolicyEnforced, Disclaimer: config.DefaultDisclaimer}
}

func TestResolve_NilOptionsYieldsDefaults(t *testing.T) {
	d := permissiveResolver().Resolve(nil)

	if d.Paper.Name != "A4" {
		t.Fatalf("expected A4 default, got %q", d.Paper.Name)
	}
	if d.Landscape {
		t.Fatalf("expected portrait default")
	}
	if !d.PrintBackground {
		t.Fatalf("expected printBackground default true")
	}
	if d.Margin != (Margin{Top: "20mm", Right: "20mm", Bottom: "20mm", Left: "20mm"}) {
		t.Fatalf("unexpected default margins: %+v", d.Margin)
	}
	if d.DisplayHeaderFooter {
		t.Fatalf("permissive policy must not display header/footer unrequested")
	}
}

func TestResolve_CallerOverrides(t *testing.T) {
	no := false
	yes := true
	d := permissiveResolver().Resolve(&Options{
		Format:              "letter",
		Orientation:         "Landscape",
		PrintBackground:     &no,
		Margin:              Margin{Top: "10mm", Bottom: "5mm"},
		DisplayHeaderFooter: &yes,
		HeaderTemplate:      "<span>hdr</span>",
		FooterTemplate:      "<span>ftr</span>",
	})

	if d.Paper.Name != "Letter" {
		t.Fatalf("expected Letter, got %q", d.Paper.Name)
	}
	if !d.Landscape {
		t.Fatalf("expected landscape")
	}
	if d.PrintBackground {
		t.Fatalf("expected printBackground off")
	}
	if d.Margin.Top != "10mm" || d.Margin.Bottom != "5mm" || d.Margin.Right != "20mm" {
		t.Fatalf("unexpected margins: %+v", d.Margin)
	}
	if !d.DisplayHeaderFooter || d.HeaderTemplate != "<span>hdr</span>" || d.FooterTemplate != "<span>ftr</span>" {
		t.Fatalf("caller header/footer not honored: %+v", d)
	}
}

func TestResolve_UnknownValuesFallBack(t *testing.T) {
	d := permissiveResolver().Resolve(&Options{Format: "A17", Orientation: "diagonal"})
	if d.Paper.Name != "A4" || d.Landscape {
		t.Fatalf("unknown values must fall back to defaults: %+v", d)
	}
}

func TestResolve_EnforcedPolicyAppendsDisclaimer(t *testing.T) {
	d := enforcedResolver().Resolve(&Options{FooterTemplate: "<span>page</span>"})

	if !d.DisplayHeaderFooter {
		t.Fatalf("enforced policy must always display header/footer")
	}
	if !strings.HasPrefix(d.FooterTemplate, "<span>page</span>") {
		t.Fatalf("caller footer must come first: %q", d.FooterTemplate)
	}
	if !strings.Contains(d.FooterTemplate, "Generated by pdf-export") {
		t.Fatalf("disclaimer missing: %q", d.FooterTemplate)
	}
	if d.Margin.Bottom != "30mm" {
		t.Fatalf("enforced bottom margin default must be 30mm, got %q", d.Margin.Bottom)
	}
}

func TestResolve_EnforcedPolicyIgnoresCallerDisplayOptOut(t *testing.T) {
	no := false
	d := enforcedResolver().Resolve(&Options{DisplayHeaderFooter: &no})
	if !d.DisplayHeaderFooter {
		t.Fatalf("caller cannot opt out under the enforced policy")
	}
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"25.4mm", 1},
		{"2.54cm", 1},
		{"1in", 1},
		{"72pt", 1},
		{"96px", 1},
		{"0.5", 0.5},
		{" 10 mm ", 10.0 / 25.4},
	}
	for _, tc := range tests {
		got, err := ParseLength(tc.in)
		if err != nil {
			t.Fatalf("ParseLength(%q): %v", tc.in, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("ParseLength(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := ParseLength("wide"); err == nil {
		t.Fatalf("expected error for junk input")
	}
}

func TestMarginInches_FallsBackOnJunk(t *testing.T) {
	d := permissiveResolver().Resolve(&Options{Margin: Margin{Top: "junk"}})
	top, _, _, _ := d.MarginInches()
	want := 20.0 / 25.4
	if math.Abs(top-want) > 1e-9 {
		t.Fatalf("expected fallback to 20mm, got %v", top)
	}
}
