// Package imaging inspects rendered diagram artifacts.
//
// The renderer writes its output to disk and exits. A zero exit status does
// not prove the artifact is usable: headless browsers occasionally leave a
// truncated PNG or an empty SVG behind. Inspect reads the bytes far enough
// to confirm they are a real image and reports the dimensions so they can be
// logged alongside the render. Pixel data is never decoded.
//
// # Supported Formats
//
//   - "png": the IHDR header is decoded for the dimensions and the file must
//     end with an IEND chunk
//   - "svg": the root element must be <svg>; dimensions come from the
//     width/height attributes, falling back to the viewBox
//
// # Dimensions
//
// SVG documents produced by Mermaid usually declare width="100%" and carry
// their real size in the viewBox. Dimensions that cannot be determined are
// reported as zero; that is not an error.
package imaging
