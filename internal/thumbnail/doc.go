// Package thumbnail synthesizes the final JPEG from a selected frame.
//
// Square targets with cropping enabled are first center-cropped using the
// frame's shorter side; every target is then fitted inside its bounding box
// with a high-quality filter, preserving aspect ratio and never enlarging.
//
// Two renderers are available: ImagingRenderer (pure Go, configurable
// filter) and VipsRenderer (libvips, lower memory use on large frames).
package thumbnail
