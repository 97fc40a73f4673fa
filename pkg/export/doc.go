// Package export converts tufting layouts into output artifacts.
//
// Supported formats:
//   - json: the calculator API response {"points": [[x,y],...], "rectangle": {"x","y"}}
//   - csv:  one row per point, numbered from 1, for workshop printouts
//   - svg:  vector preview with the first point highlighted
//   - png:  raster preview drawn with the gogpu/gg software renderer
//
// Use [Render] to dispatch on a format string, or call the format-specific
// functions directly.
package export
