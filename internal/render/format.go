package render

import (
	"fmt"
	"strings"
)

// Format selects the renderer output type.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"

	// DefaultFormat is used when a request does not name a format.
	DefaultFormat = FormatPNG
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatPNG, FormatSVG}
}

// ParseFormat converts a user-supplied format name. An empty string yields
// DefaultFormat. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultFormat, nil
	case FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q (want png or svg)", ErrInvalidRequest, s)
	}
}

// MIMEType returns the media type of images in this format.
func (f Format) MIMEType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "image/png"
	}
}

// Ext returns the file extension mmdc uses to infer the output type.
func (f Format) Ext() string {
	return "." + string(f)
}

// Raster reports whether the format is a bitmap.
func (f Format) Raster() bool {
	return f == FormatPNG
}
