package export

import (
	"testing"

	apperrors "github.com/osmtree/osmtree/pkg/errors"
	"github.com/osmtree/osmtree/pkg/integrations/overpass"
)

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Structure != StructureTree || opts.Format != FormatJSON || opts.Include != IncludeSimple {
		t.Errorf("defaults = %+v", opts)
	}
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code apperrors.Code
	}{
		{"valid", Options{Structure: "nodes", Format: "xml", Include: "geometry"}, ""},
		{"bad structure", Options{Structure: "graph"}, apperrors.ErrCodeInvalidStructure},
		{"bad format", Options{Format: "csv"}, apperrors.ErrCodeInvalidFormat},
		{"case-sensitive format", Options{Format: "JSON"}, apperrors.ErrCodeInvalidFormat},
		{"bad include", Options{Include: "all"}, apperrors.ErrCodeInvalidInclude},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
			if !apperrors.IsInvalid(err) {
				t.Errorf("IsInvalid(%v) = false", err)
			}
		})
	}
}

func TestFileNameAndContentType(t *testing.T) {
	tests := []struct {
		opts     Options
		file     string
		mimeType string
	}{
		{Options{Format: FormatJSON}, "add_selection.json", "application/json"},
		{Options{Format: FormatXML}, "add_selection.xml", "application/xml"},
		{Options{Format: FormatXML, LegacyContentType: true}, "add_selection.xml", "application/json"},
	}
	for _, tt := range tests {
		if got := tt.opts.FileName(); got != tt.file {
			t.Errorf("FileName() = %q, want %q", got, tt.file)
		}
		if got := tt.opts.ContentType(); got != tt.mimeType {
			t.Errorf("ContentType() = %q, want %q", got, tt.mimeType)
		}
	}
}

func TestDetail(t *testing.T) {
	tests := []struct {
		include string
		detail  overpass.Detail
		ok      bool
	}{
		{IncludeSimple, "", false},
		{IncludeTags, overpass.DetailTags, true},
		{IncludeGeometry, overpass.DetailGeometry, true},
	}
	for _, tt := range tests {
		d, ok := Options{Include: tt.include}.Detail()
		if d != tt.detail || ok != tt.ok {
			t.Errorf("Detail(%s) = %q, %v; want %q, %v", tt.include, d, ok, tt.detail, tt.ok)
		}
	}
}
