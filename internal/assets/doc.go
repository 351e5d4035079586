// Package assets provides the invoice .docx template and the preview stylesheet.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (default invoice)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the generator. It tries the custom
// FilesystemLoader first, falling back to EmbeddedLoader if the asset is not
// found. This lets an operator replace the invoice layout without rebuilding.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css     # preview and PDF stylesheet
//	└── templates/
//	    └── {name}.docx    # Word template with {placeholder} fields
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
