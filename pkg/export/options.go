package export

import (
	"github.com/charmbracelet/log"

	apperrors "github.com/osmtree/osmtree/pkg/errors"
	"github.com/osmtree/osmtree/pkg/integrations/overpass"
)

// Structure values.
const (
	StructureTree  = "tree"
	StructureNodes = "nodes"
)

// Format values.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

// Include values.
const (
	IncludeSimple   = "simple"
	IncludeTags     = "tags"
	IncludeGeometry = "geometry"
)

// Defaults applied by [Options.ValidateAndSetDefaults].
const (
	DefaultStructure = StructureTree
	DefaultFormat    = FormatJSON
	DefaultInclude   = IncludeSimple
)

// FileBase is the base name of the exported file.
const FileBase = "add_selection"

// Content types.
const (
	ContentTypeJSON = "application/json"
	ContentTypeXML  = "application/xml"
)

// ValidStructures is the set of supported output structures.
var ValidStructures = map[string]bool{
	StructureTree:  true,
	StructureNodes: true,
}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatXML:  true,
}

// ValidIncludes is the set of supported enrichment levels.
var ValidIncludes = map[string]bool{
	IncludeSimple:   true,
	IncludeTags:     true,
	IncludeGeometry: true,
}

// Options configures one export run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Structure string `json:"structure,omitempty"`
	Format    string `json:"format,omitempty"`
	Include   string `json:"include,omitempty"`

	// Strict fails the run when records cannot be placed in the tree.
	Strict bool `json:"strict,omitempty"`

	// Refresh bypasses the relation cache.
	Refresh bool `json:"refresh,omitempty"`

	// LegacyContentType reports application/json for every format, as the
	// browser tool did.
	LegacyContentType bool `json:"legacy_content_type,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults fills empty fields with defaults and validates the
// rest. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Structure == "" {
		o.Structure = DefaultStructure
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Include == "" {
		o.Include = DefaultInclude
	}
	if err := ValidateStructure(o.Structure); err != nil {
		return err
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if err := ValidateInclude(o.Include); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateStructure checks that s is a supported structure.
func ValidateStructure(s string) error {
	if !ValidStructures[s] {
		return apperrors.New(apperrors.ErrCodeInvalidStructure, "invalid structure: %q (must be tree or nodes)", s)
	}
	return nil
}

// ValidateFormat checks that f is a supported output format.
func ValidateFormat(f string) error {
	if !ValidFormats[f] {
		return apperrors.New(apperrors.ErrCodeInvalidFormat, "invalid format: %q (must be json or xml)", f)
	}
	return nil
}

// ValidateInclude checks that i is a supported enrichment level.
func ValidateInclude(i string) error {
	if !ValidIncludes[i] {
		return apperrors.New(apperrors.ErrCodeInvalidInclude, "invalid include: %q (must be simple, tags or geometry)", i)
	}
	return nil
}

// FileName returns the download name for the configured format.
func (o Options) FileName() string {
	return FileBase + "." + o.Format
}

// ContentType returns the MIME type for the configured format.
func (o Options) ContentType() string {
	if o.Format == FormatXML && !o.LegacyContentType {
		return ContentTypeXML
	}
	return ContentTypeJSON
}

// Detail returns the Overpass detail level needed for Include, and false
// when no lookup is needed.
func (o Options) Detail() (overpass.Detail, bool) {
	switch o.Include {
	case IncludeTags:
		return overpass.DetailTags, true
	case IncludeGeometry:
		return overpass.DetailGeometry, true
	}
	return "", false
}
