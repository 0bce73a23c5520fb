// Package provider sources background images for the pipeline.
//
// An [ImageProvider] turns a text prompt and target dimensions into encoded
// image bytes. Implementations:
//
//   - [FileProvider]: reads a local file, ignoring the prompt
//   - [HTTPProvider]: fetches from an image service over HTTP with retry
//     and read-through caching
//
// The pipeline decodes whatever bytes a provider returns through
// [github.com/menuforge/menuforge/pkg/vision.Decode], so providers may
// serve any supported encoding (PNG, JPEG, GIF, BMP, WebP).
package provider
