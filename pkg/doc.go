// Package pkg provides the core libraries for Matelas tufting layouts.
//
// # Overview
//
// Matelas places tufting buttons on a rectangular mattress in a staggered
// grid. The pkg directory is organized into three areas:
//
//  1. [tufting] - The layout engine (validation + point generation)
//  2. [export], [pipeline] - Output formats and cached orchestration
//  3. [cache], [config], [errors], [observability], [buildinfo] - Infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	Rectangle + Spacing
//	         ↓
//	    [tufting] package (validate, compute points)
//	         ↓
//	    [pipeline] package (cache lookup, render)
//	         ↓
//	    [export] package (JSON, CSV, SVG, PNG)
//
// # Quick Start
//
//	l, err := tufting.Compute(tufting.Params{
//	    Rectangle: tufting.Rectangle{Width: 220, Height: 240},
//	    Spacing:   tufting.DefaultSpacing(),
//	})
//	if err != nil {
//	    return err
//	}
//	csv, err := export.Render(l, export.FormatCSV)
//
// [tufting]: github.com/matzehuels/matelas/pkg/tufting
// [export]: github.com/matzehuels/matelas/pkg/export
// [pipeline]: github.com/matzehuels/matelas/pkg/pipeline
// [cache]: github.com/matzehuels/matelas/pkg/cache
// [config]: github.com/matzehuels/matelas/pkg/config
// [errors]: github.com/matzehuels/matelas/pkg/errors
// [observability]: github.com/matzehuels/matelas/pkg/observability
// [buildinfo]: github.com/matzehuels/matelas/pkg/buildinfo
package pkg
