// Package pkg provides the core libraries for Menuforge menu generation.
//
// # Overview
//
// Menuforge lays out menu text over background artwork: it measures the
// background's clear zone (the quiet region able to host overlay text),
// composes positioned type inside it, and renders print-ready output. The
// pkg directory is organized into these areas:
//
//  1. [vision] - Clear-zone detection over decoded pixel buffers
//  2. [layout] - The adaptive text layout engine
//  3. [menu] - Content, brand, and format preset models
//  4. [render] - Output sinks (SVG, JSON, PDF, PNG, raster preview)
//  5. [pipeline] - Orchestration (detect → layout → render) with caching
//  6. [cache], [store], [provider], [httputil] - Infrastructure
//
// # Architecture
//
// The typical data flow through Menuforge:
//
//	Background Image + Content TOML
//	         ↓
//	vision.MeasureClearZone
//	         ↓
//	layout.Compute
//	         ↓
//	render sinks → SVG / JSON / PDF / PNG / preview
//
// The [pipeline] package ties the stages together and is the entry point
// shared by the CLI and the HTTP API.
package pkg
