package cache

// KeyVersion is embedded in every key. Bump it whenever the layout
// algorithm or an artifact encoding changes.
const KeyVersion = "v1"

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey returns the key for a computed layout.
	LayoutKey(opts LayoutKeyOpts) string

	// ArtifactKey returns the key for a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every input that influences a layout.
type LayoutKeyOpts struct {
	Width        float64 `json:"w"`
	Height       float64 `json:"h"`
	MinDistX     float64 `json:"mx"`
	MinDistY     float64 `json:"my"`
	EdgeDistance float64 `json:"e"`
	MaxPoints    int     `json:"max,omitempty"`
}

// ArtifactKeyOpts holds every input that influences a rendered artifact.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	Size      int    `json:"size,omitempty"`
	Distances bool   `json:"distances,omitempty"`
	Highlight bool   `json:"highlight,omitempty"`
}

// DefaultKeyer generates unprefixed keys of the form "kind:version:hash".
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(opts LayoutKeyOpts) string {
	return hashKey("layout:"+KeyVersion, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+KeyVersion, layoutHash, opts)
}
