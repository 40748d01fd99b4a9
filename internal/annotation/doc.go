// Package annotation defines the sample record shared by the augmentation
// engine, the transform adapter and the MCP tools.
//
// A Sample is one image plus zero or more annotation collections that all refer
// to that image. Instance-indexed collections (labels, boxes, masks, crowd
// flags, keypoint groups) are aligned by position: index i in every collection
// describes the same physical object.
//
// # Coordinate System
//
// Coordinates are absolute pixels with the origin at the top-left corner:
//   - Boxes are (X1, Y1, X2, Y2) with X1 < X2 and Y1 < Y2
//   - Keypoints are (X, Y) plus a visibility flag (0 = not visible)
//   - Masks are binary *image.Gray planes the size of the image (0 or 1)
//
// # Optional Fields
//
// A nil collection means the field was not supplied. A non-nil empty
// collection means the field was supplied and has no instances. The adapter
// returns exactly the fields it was given, so this distinction survives a
// round trip.
package annotation
