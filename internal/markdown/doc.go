// Package markdown renders stored Markdown into embeddable HTML plus a table
// of contents. A single goldmark engine is shared by every call; per-call
// state (theme, code transformers, collected headings) lives in the goldmark
// parser.Context so concurrent renders never observe each other.
//
// Stages run in a fixed order: GFM parse, heading anchors and TOC, fenced
// code preparation, chroma highlighting with block decoration and line
// transformers, HTML serialisation with raw HTML passed through, and
// external link hardening.
package markdown
