// Package augment implements the joint image/annotation transform engine used
// by the adapter, the operations it runs and the builders that assemble them.
//
// # Operations
//
// Every operation carries an explicit Kind from a closed set, so callers can
// look operations up by kind (see Find) instead of by Go type. Operations hold
// only their configuration. Randomness comes from the *rand.Rand handed to
// Pipeline.Run, so one operation list can be shared by many goroutines as long
// as each goroutine brings its own random source.
//
// Geometric operations move the image, every mask, every box and every
// keypoint with a single random draw:
//   - LongestMaxSize, SmallestMaxSize, Resize
//   - HorizontalFlip
//   - ShiftScaleRotate
//   - BBoxSafeCrop
//   - Pad
//
// Photometric operations only touch image pixels:
//   - RGBShift
//   - BrightnessContrast
//   - Blur
//
// OneOrOther picks between two operations.
//
// # Engine Contract
//
// Pipeline.Run mirrors the contract of a box- and keypoint-aware augmentation
// library:
//   - Boxes are absolute (x1, y1, x2, y2). After every operation they are
//     clipped to the image and boxes with zero area are removed along with
//     their id, so the returned ids reveal which instances survived.
//   - Keypoints are absolute (x, y) with a parallel label channel. They are
//     never removed or clipped; visibility is the caller's business.
//   - Masks are transformed with nearest-neighbour sampling and never removed.
//
// # Builders
//
// TrainPipeline and EvalPipeline assemble operation lists from named steps.
// The order is fixed: presize, flip, shift/scale/rotate, colour steps, the
// final crop-or-resize, then pad.
package augment
