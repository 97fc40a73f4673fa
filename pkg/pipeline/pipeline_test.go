package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/matelas/pkg/cache"
	"github.com/matzehuels/matelas/pkg/errors"
	"github.com/matzehuels/matelas/pkg/export"
	"github.com/matzehuels/matelas/pkg/observability"
	"github.com/matzehuels/matelas/pkg/tufting"
)

func standardParams() tufting.Params {
	return tufting.Params{
		Rectangle: tufting.Rectangle{Width: 220, Height: 240},
		Spacing:   tufting.DefaultSpacing(),
	}
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// failingCache returns an error from every operation.
type failingCache struct{}

var errBackend = stderrors.New("backend down")

func (failingCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, errBackend }
func (failingCache) Set(context.Context, string, []byte, time.Duration) error { return errBackend }
func (failingCache) Delete(context.Context, string) error                     { return errBackend }
func (failingCache) Close() error                                             { return nil }

type countingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks
	layouts, renders, hits, misses, sets int
}

func (h *countingHooks) OnLayoutComplete(context.Context, int, time.Duration, error) { h.layouts++ }
func (h *countingHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {
	h.renders++
}
func (h *countingHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantCode errors.Code
	}{
		{"valid", Options{Params: standardParams()}, ""},
		{"bad format", Options{Params: standardParams(), Formats: []string{"pdf"}}, errors.ErrCodeInvalidFormat},
		{"bad width", Options{Params: tufting.Params{Spacing: tufting.DefaultSpacing()}}, errors.ErrCodeInvalidDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q (err=%v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Params: standardParams()}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != export.FormatJSON {
		t.Errorf("Formats = %v, want [json]", opts.Formats)
	}
	if opts.Size != export.DefaultPreviewWidth {
		t.Errorf("Size = %d, want %d", opts.Size, export.DefaultPreviewWidth)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Size: 400, Distances: true}

	csv := opts.ArtifactKeyOpts(export.FormatCSV)
	if csv.Size != 0 || csv.Distances || csv.Highlight {
		t.Errorf("csv key should ignore preview options: %+v", csv)
	}

	svg := opts.ArtifactKeyOpts(export.FormatSVG)
	if svg.Size != 400 || !svg.Distances || !svg.Highlight {
		t.Errorf("svg key should carry preview options: %+v", svg)
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(cache.NewMemoryCache(0), nil, quietLogger())
	defer r.Close()

	res, err := r.Execute(context.Background(), Options{
		Params:  standardParams(),
		Formats: []string{export.FormatJSON, export.FormatCSV, export.FormatSVG},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.PointCount != 39 {
		t.Errorf("PointCount = %d, want 39", res.Stats.PointCount)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("first run should miss the cache: %+v", res.CacheInfo)
	}
	for _, f := range []string{export.FormatJSON, export.FormatCSV, export.FormatSVG} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if !strings.HasPrefix(string(res.Artifacts[export.FormatCSV]), "Point #,X (cm),Y (cm)") {
		t.Errorf("csv artifact has wrong header: %q", res.Artifacts[export.FormatCSV])
	}
}

func TestExecuteCacheHit(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	r := NewRunner(cache.NewMemoryCache(0), nil, quietLogger())
	opts := Options{Params: standardParams(), Formats: []string{export.FormatCSV}}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}

	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit the cache: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[export.FormatCSV], second.Artifacts[export.FormatCSV]) {
		t.Error("cached artifact differs from computed one")
	}
	if second.Layout.Count() != first.Layout.Count() || second.Layout.Dx != first.Layout.Dx {
		t.Error("cached layout differs from computed one")
	}
	if hooks.layouts != 1 || hooks.renders != 1 {
		t.Errorf("layouts=%d renders=%d, want 1 each", hooks.layouts, hooks.renders)
	}
	if hooks.hits != 2 || hooks.misses != 2 || hooks.sets != 2 {
		t.Errorf("hits=%d misses=%d sets=%d, want 2 each", hooks.hits, hooks.misses, hooks.sets)
	}
}

func TestExecuteRefresh(t *testing.T) {
	r := NewRunner(cache.NewMemoryCache(0), nil, quietLogger())
	opts := Options{Params: standardParams()}

	if _, err := r.Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	opts.Refresh = true
	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass cache reads: %+v", res.CacheInfo)
	}
}

func TestExecuteValidationError(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	p := standardParams()
	p.EdgeDistance = 150

	_, err := r.Execute(context.Background(), Options{Params: p})
	if !errors.Is(err, errors.ErrCodeInvalidEdgeDistance) {
		t.Errorf("err = %v, want INVALID_EDGE_DISTANCE", err)
	}
	if !errors.IsValidation(err) {
		t.Error("edge distance error should be a validation error")
	}
}

func TestExecutePreviewSizeTooLarge(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())

	_, err := r.Execute(context.Background(), Options{
		Params:  standardParams(),
		Formats: []string{export.FormatPNG},
		Size:    export.MaxPreviewSize + 1,
	})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestExecuteTooDense(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())

	_, err := r.Execute(context.Background(), Options{Params: standardParams(), MaxPoints: 10})
	if !errors.Is(err, errors.ErrCodeLayoutTooDense) {
		t.Errorf("err = %v, want LAYOUT_TOO_DENSE", err)
	}
}

func TestExecuteIgnoresCacheErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{})
	r := NewRunner(failingCache{}, nil, logger)

	res, err := r.Execute(context.Background(), Options{Params: standardParams()})
	if err != nil {
		t.Fatalf("cache errors should not fail the run: %v", err)
	}
	if res.Layout.Count() != 39 {
		t.Errorf("Count = %d, want 39", res.Layout.Count())
	}
	if !strings.Contains(buf.String(), "cache read failed") {
		t.Errorf("expected cache failure to be logged, got %q", buf.String())
	}
}

func TestRenderDeduplicatesFormats(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := NewRunner(nil, nil, quietLogger())
	l, err := tufting.Compute(standardParams())
	if err != nil {
		t.Fatal(err)
	}

	artifacts, err := r.Render(context.Background(), l, Options{Formats: []string{"svg", "svg"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(artifacts) != 1 || hooks.renders != 1 {
		t.Errorf("artifacts=%d renders=%d, want 1 each", len(artifacts), hooks.renders)
	}
}

func TestScopedKeyerIsolatesRunners(t *testing.T) {
	shared := cache.NewMemoryCache(0)
	a := NewRunner(shared, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "a:"), quietLogger())
	b := NewRunner(shared, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "b:"), quietLogger())
	opts := Options{Params: standardParams()}

	if _, err := a.Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	res, err := b.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("runners with different scopes should not share entries")
	}
}
