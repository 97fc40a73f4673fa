// Package pipeline provides the layout pipeline shared by the CLI and the
// HTTP server.
//
// The pipeline has two stages:
//
//  1. Layout: validate parameters and compute the button grid
//  2. Render: produce artifacts (JSON, CSV, SVG, PNG) from a layout
//
// Both stages are cached through [cache.Cache]. Because the layout engine is
// a pure function, a cache entry is valid for as long as [cache.KeyVersion]
// does not change.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(0), nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Params:  params,
//	    Formats: []string{export.FormatCSV},
//	})
//	if err != nil {
//	    return err
//	}
//	csv := result.Artifacts[export.FormatCSV]
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/matelas/pkg/cache"
	"github.com/matzehuels/matelas/pkg/export"
	"github.com/matzehuels/matelas/pkg/tufting"
)

// Options contains all configuration for a pipeline run.
type Options struct {
	// Layout options
	Params    tufting.Params
	MaxPoints int // 0 uses tufting.DefaultMaxPoints

	// Render options
	Formats     []string
	Size        int  // preview size in pixels, 0 uses export.DefaultPreviewWidth
	Distances   bool // draw distance guides in previews
	NoHighlight bool // draw the first point like the others

	// Refresh bypasses cache reads; results are still written.
	Refresh bool

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Layout    *tufting.Layout
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PointCount int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// SetRenderDefaults fills in default render options.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{export.FormatJSON}
	}
	if o.Size <= 0 {
		o.Size = export.DefaultPreviewWidth
	}
}

// ValidateForLayout checks the layout parameters without computing them.
func (o *Options) ValidateForLayout() error {
	return tufting.Validate(o.Params)
}

// ValidateForRender applies render defaults and checks every format and the
// preview size.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := export.ValidatePreviewSize(o.Size); err != nil {
		return err
	}
	for _, f := range o.Formats {
		if err := export.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults validates the whole run.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:        o.Params.Width,
		Height:       o.Params.Height,
		MinDistX:     o.Params.MinDistX,
		MinDistY:     o.Params.MinDistY,
		EdgeDistance: o.Params.EdgeDistance,
		MaxPoints:    o.MaxPoints,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
// Preview options only affect svg and png, so they are left out of the key
// for the other formats.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if format == export.FormatSVG || format == export.FormatPNG {
		k.Size = o.Size
		k.Distances = o.Distances
		k.Highlight = !o.NoHighlight
	}
	return k
}

// PreviewOptions converts render options to export preview options.
func (o *Options) PreviewOptions() []export.PreviewOption {
	opts := []export.PreviewOption{export.WithSize(o.Size)}
	if o.Distances {
		opts = append(opts, export.WithDistanceLines())
	}
	if o.NoHighlight {
		opts = append(opts, export.WithoutHighlight())
	}
	return opts
}
