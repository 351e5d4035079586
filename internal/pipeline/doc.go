// Package pipeline implements the DOCX-to-HTML preview pipeline.
//
// The stages run in order:
//   - ExtractBlocks reads word/document.xml into paragraphs and tables
//   - ToMarkdown renders those blocks as escaped GitHub Flavored Markdown
//   - GoldmarkConverter turns the Markdown into an HTML fragment
//   - Sanitize strips anything outside a user-content allowlist
//
// The conversion is structural and lossy: headings, emphasis, line breaks
// and tables survive, while fonts, colours, images and page layout do not.
// For PDF export, WrapDocument and CSSInjection turn the fragment into a
// standalone page that headless Chrome can print.
package pipeline
