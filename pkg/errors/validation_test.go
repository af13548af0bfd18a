package errors

import (
	"strings"
	"testing"
)

func TestValidateRelationID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "62422", false},
		{"single digit", "7", false},

		{"empty", "", true},
		{"leading zero", "0123", true},
		{"zero", "0", true},
		{"negative", "-5", true},
		{"prefixed", "osm-rel-62422", true},
		{"query injection", "1); node(1", true},
		{"too long", "1234567890123456", true},
		{"whitespace", " 62422", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRelationID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRelationID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidID) {
				t.Errorf("ValidateRelationID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidID)
			}
		})
	}
}

func TestValidateRelationIDs(t *testing.T) {
	if err := ValidateRelationIDs([]string{"1", "2"}); err != nil {
		t.Errorf("ValidateRelationIDs() error = %v", err)
	}
	if err := ValidateRelationIDs(nil); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("ValidateRelationIDs(nil) = %v, want %v", err, ErrCodeInvalidInput)
	}
	if err := ValidateRelationIDs([]string{"1", "x"}); !Is(err, ErrCodeInvalidID) {
		t.Errorf("ValidateRelationIDs(bad) = %v, want %v", err, ErrCodeInvalidID)
	}
}

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Berlin", false},
		{"unicode", "Köln Innenstadt", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", 300), true},
		{"control char", "Ber\x01lin", true},
		{"newline", "Ber\nlin", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateQuery(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://overpass-api.de/api/interpreter", false},
		{"http", "http://localhost:8080", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"no scheme", "example.com", true},
		{"javascript", "javascript:alert(1)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOutputName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default", "add_selection.json", false},
		{"xml", "add_selection.xml", false},

		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"path", "dir/file.json", true},
		{"windows path", "dir\\file.json", true},
		{"null byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
