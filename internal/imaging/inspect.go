package imaging

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image/png"
	"io"
	"strconv"
	"strings"
)

// pngTrailer is the IEND chunk every complete PNG ends with.
var pngTrailer = []byte{0, 0, 0, 0, 'I', 'E', 'N', 'D', 0xAE, 0x42, 0x60, 0x82}

// ErrEmpty is returned when there are no bytes to inspect.
var ErrEmpty = errors.New("image data is empty")

// ImageInfo contains metadata about a rendered image.
type ImageInfo struct {
	// Width is the image width in pixels (0 if unknown).
	Width int `json:"width"`

	// Height is the image height in pixels (0 if unknown).
	Height int `json:"height"`

	// Format is "png" or "svg".
	Format string `json:"format"`

	// SizeBytes is the length of the encoded image.
	SizeBytes int64 `json:"size_bytes"`
}

// Inspect verifies that data is a well-formed image of the given format and
// returns its metadata.
//
// Parameters:
//   - data: The encoded image as written by the renderer.
//   - format: "png" or "svg".
//
// Returns:
//   - *ImageInfo: Dimensions and size of the image.
//   - error: Non-nil if data is empty, cannot be decoded, or format is unknown.
func Inspect(data []byte, format string) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	switch format {
	case "png":
		return inspectPNG(data)
	case "svg":
		return inspectSVG(data)
	default:
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}
}

func inspectPNG(data []byte) (*ImageInfo, error) {
	// Only the header is decoded. Large diagrams would otherwise be
	// inflated into memory just to read their size.
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode png: %w", err)
	}
	if !bytes.HasSuffix(data, pngTrailer) {
		return nil, errors.New("failed to decode png: truncated (no IEND chunk)")
	}

	return &ImageInfo{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Format:    "png",
		SizeBytes: int64(len(data)),
	}, nil
}

func inspectSVG(data []byte) (*ImageInfo, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	// Mermaid embeds HTML entities inside foreignObject labels.
	dec.Strict = false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.New("no <svg> root element found")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse svg: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return nil, fmt.Errorf("unexpected root element <%s>", start.Name.Local)
		}

		info := &ImageInfo{Format: "svg", SizeBytes: int64(len(data))}
		var viewBox string
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "width":
				info.Width = parseLength(attr.Value)
			case "height":
				info.Height = parseLength(attr.Value)
			case "viewBox":
				viewBox = attr.Value
			}
		}

		if (info.Width == 0 || info.Height == 0) && viewBox != "" {
			if w, h, ok := parseViewBox(viewBox); ok {
				if info.Width == 0 {
					info.Width = w
				}
				if info.Height == 0 {
					info.Height = h
				}
			}
		}
		return info, nil
	}
}

// parseLength converts an absolute SVG length such as "120" or "120.5px" to
// whole pixels. Relative lengths ("100%", "10em") yield 0.
func parseLength(s string) int {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return int(v + 0.5)
}

func parseViewBox(s string) (int, int, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) != 4 {
		return 0, 0, false
	}
	w, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || w < 0 {
		return 0, 0, false
	}
	h, err := strconv.ParseFloat(fields[3], 64)
	if err != nil || h < 0 {
		return 0, 0, false
	}
	return int(w + 0.5), int(h + 0.5), true
}
