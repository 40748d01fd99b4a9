// Package imaging handles image I/O for the augmentation server.
//
// It loads images and instance masks from disk through a shared cache,
// encodes augmented images and masks as base64 PNG for MCP responses, and
// renders annotation overlays so a caller can check boxes, keypoints and
// masks against the augmented pixels.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Boxes are (x1, y1, x2, y2)
// with the max edges exclusive.
//
// # Masks
//
// Masks on disk may be any decodable image. LoadMask binarizes them: every
// pixel with non-zero luminance becomes 1. EncodeMaskPNG maps 1 back to 255
// so the mask is visible when displayed.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Cached images are shared and must
// not be modified by callers; the augmentation pipeline and Overlay always
// work on copies.
//
// # Performance Considerations
//
// Large images stay in memory while cached. Long-running processes should use
// Evict or Clear to bound memory.
package imaging
