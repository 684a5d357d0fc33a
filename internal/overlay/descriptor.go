package overlay

// Rect describes a window's position and size in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Chrome holds the window-manager facing flags of a window.
type Chrome struct {
	Decorated        bool
	Transparent      bool
	AlwaysOnTop      bool
	SkipTaskbar      bool
	Resizable        bool
	Closable         bool
	Minimizable      bool
	Maximizable      bool
	Focusable        bool
	Shadowed         bool
	InitiallyVisible bool
}

// Descriptor is everything the host needs to build an overlay window.
type Descriptor struct {
	Label    string
	Route    string
	Title    string
	Geometry Rect
	Chrome   Chrome
}

// Placement selects the zero-footprint geometry convention for new overlays.
type Placement string

const (
	// PlacementOrigin puts overlays at (0,0) with a 1x1 size.
	PlacementOrigin Placement = "origin"
	// PlacementOffscreen puts overlays far off-screen with the smallest size
	// the host accepts.
	PlacementOffscreen Placement = "offscreen"
)

// Offscreen coordinate used by PlacementOffscreen.
const offscreenCoord = 1000000

const (
	DefaultEntryPage = "index.html"
	DefaultTitle     = "input-viz-key"
)

// Options controls how descriptors are synthesized.
type Options struct {
	EntryPage string
	Title     string
	Placement Placement
	// Transparent requests a transparent background. Callers set it only when
	// the host supports compositor transparency.
	Transparent bool
}

// Route derives the content route for label: "<entry-page>#<label>".
func Route(entryPage, label string) string {
	return entryPage + "#" + label
}

// Geometry returns the initial geometry for a placement convention.
func Geometry(p Placement) Rect {
	if p == PlacementOffscreen {
		// X11 rejects zero-sized windows; 1x1 is the smallest legal size.
		return Rect{X: offscreenCoord, Y: offscreenCoord, Width: 1, Height: 1}
	}
	return Rect{X: 0, Y: 0, Width: 1, Height: 1}
}

// OverlayChrome returns the fixed chrome of an overlay window.
func OverlayChrome(transparent bool) Chrome {
	return Chrome{
		Decorated:        false,
		Transparent:      transparent,
		AlwaysOnTop:      true,
		SkipTaskbar:      true,
		Resizable:        false,
		Closable:         false,
		Minimizable:      false,
		Maximizable:      false,
		Focusable:        false,
		Shadowed:         false,
		InitiallyVisible: false,
	}
}

// NewDescriptor synthesizes the descriptor for label. The result depends only
// on label and opts.
func NewDescriptor(label string, opts Options) Descriptor {
	entry := opts.EntryPage
	if entry == "" {
		entry = DefaultEntryPage
	}
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	return Descriptor{
		Label:    label,
		Route:    Route(entry, label),
		Title:    title,
		Geometry: Geometry(opts.Placement),
		Chrome:   OverlayChrome(opts.Transparent),
	}
}
