package render

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Theme is a built-in Mermaid theme passed to the renderer with -t.
type Theme string

const (
	ThemeDefault Theme = "default"
	ThemeDark    Theme = "dark"
	ThemeForest  Theme = "forest"
	ThemeNeutral Theme = "neutral"
)

// Themes lists the themes accepted by the renderer.
func Themes() []Theme {
	return []Theme{ThemeDefault, ThemeDark, ThemeForest, ThemeNeutral}
}

// ParseTheme validates a theme name. An empty string leaves the renderer's
// own default in place.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return "", nil
	}
	for _, known := range Themes() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported theme %q", ErrInvalidRequest, s)
}

// BackgroundTransparent is the background applied to PNG output when the
// request does not set one.
const BackgroundTransparent = "transparent"

// ParseBackground validates a background colour. Accepted values are
// "transparent", a hex colour ("#fff", "#1e1e2e") or a CSS colour keyword
// ("white", "lightgray"). Hex colours are normalised to lowercase "#rrggbb".
func ParseBackground(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}

	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return "", fmt.Errorf("%w: invalid background colour %q", ErrInvalidRequest, s)
		}
		return c.Hex(), nil
	}

	lower := strings.ToLower(s)
	for _, r := range lower {
		if r < 'a' || r > 'z' {
			return "", fmt.Errorf("%w: invalid background colour %q", ErrInvalidRequest, s)
		}
	}
	return lower, nil
}

// Request describes one render. It is immutable once built by NewRequest.
type Request struct {
	// Diagram is the Mermaid source text.
	Diagram string

	// Format is the output type. Empty means DefaultFormat.
	Format Format

	// Theme is optional; empty leaves the renderer default.
	Theme Theme

	// Background is optional; empty means transparent for PNG and the
	// renderer default for SVG.
	Background string
}

// NewRequest validates and normalises user-supplied render parameters.
func NewRequest(diagram, format, theme, background string) (Request, error) {
	if strings.TrimSpace(diagram) == "" {
		return Request{}, fmt.Errorf("%w: diagram is empty", ErrInvalidRequest)
	}

	f, err := ParseFormat(format)
	if err != nil {
		return Request{}, err
	}
	t, err := ParseTheme(theme)
	if err != nil {
		return Request{}, err
	}
	bg, err := ParseBackground(background)
	if err != nil {
		return Request{}, err
	}

	return Request{
		Diagram:    diagram,
		Format:     f,
		Theme:      t,
		Background: bg,
	}, nil
}

// normalize fills defaults for requests built without NewRequest and
// rejects ones that could not have come from it.
func (r Request) normalize() (Request, error) {
	if strings.TrimSpace(r.Diagram) == "" {
		return r, fmt.Errorf("%w: diagram is empty", ErrInvalidRequest)
	}
	f, err := ParseFormat(string(r.Format))
	if err != nil {
		return r, err
	}
	r.Format = f

	if r.Theme, err = ParseTheme(string(r.Theme)); err != nil {
		return r, err
	}
	if r.Background, err = ParseBackground(r.Background); err != nil {
		return r, err
	}
	return r, nil
}

// background returns the value for the renderer's -b flag, or "" to omit it.
func (r Request) background() string {
	if r.Background != "" {
		return r.Background
	}
	if r.Format.Raster() {
		return BackgroundTransparent
	}
	return ""
}
