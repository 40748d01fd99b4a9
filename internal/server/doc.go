// Package server implements the MCP (Model Context Protocol) server for
// annotation-aware image augmentation.
//
// An MCP client hands the server an image path plus its annotations (class
// labels, boxes, crowd flags, keypoints and instance mask files). The server
// runs them through a train or eval augmentation pipeline and returns the
// augmented image together with the annotations that survived it, already
// reconciled with the pipeline's resizes, flips, crops and padding.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load an image and get its metadata
//   - aug_apply: Augment an image and its annotations
//   - aug_preview: Same as aug_apply, with the annotations drawn on the image
//   - aug_describe_pipeline: List the operations a configuration resolves to
//   - aug_resize_dims: Aspect-preserving resize arithmetic
//
// # Pipelines
//
// Every augmentation tool starts from the server's configuration (see
// WithConfig), replaces it with the YAML file named by the "config"
// argument if one is given, then applies the inline "mode", "size",
// "height" and "width" overrides. Passing a "seed" makes the call
// reproducible; without one each call draws fresh randomness.
//
// # Annotation Fields
//
// Annotation arrays are per instance and must all have the same length. A
// field that is left out of the request is null in the response; a field
// sent as an empty array comes back as an empty array.
//
// # Image Caching
//
// Images and masks are cached by path and reused across tool calls. The cache
// persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, which names the failure class
//     ("configuration error", "invalid sample", "internal consistency error")
//
// # Usage
//
//	srv := server.New(server.WithRecorder(metrics.New()))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
