package assets

// DefaultTemplateName is the name of the built-in invoice template.
const DefaultTemplateName = "invoice"

// DefaultStyleName is the name of the built-in preview stylesheet.
const DefaultStyleName = "invoice"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the default embedded loader.
// The name should not include the .css extension or path components.
// Returns ErrStyleNotFound if the style does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads a .docx template by name using the default embedded loader.
// Returns ErrTemplateNotFound if the template does not exist.
func LoadTemplate(name string) ([]byte, error) {
	return defaultLoader.LoadTemplate(name)
}
