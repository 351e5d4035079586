// Package docx fills placeholders in Word (.docx) templates.
//
// A template is a zip archive whose content parts (word/document.xml,
// headers, footers, footnotes, endnotes) contain {name} placeholders in
// run text. Word freely splits text across runs, so placeholders are
// located on the concatenated text of each paragraph and may span several
// <w:t> elements.
//
// ParseTemplate scans the archive once and exposes the placeholder schema.
// Template.Merge checks a value map against that schema before touching any
// XML, then rewrites only <w:t> contents. Archive entries without
// placeholders are copied with their original compressed bytes.
package docx
