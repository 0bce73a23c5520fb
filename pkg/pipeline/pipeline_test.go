package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/menuforge/menuforge/pkg/cache"
	"github.com/menuforge/menuforge/pkg/menu"
	"github.com/menuforge/menuforge/pkg/store"
	"github.com/menuforge/menuforge/pkg/vision"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"preview", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	// Missing content
	opts := Options{Background: "bg.png"}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("Missing content should fail")
	}

	// Missing background without no_zone
	opts = Options{Content: "menu.toml"}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("Missing background should fail")
	}

	// NoZone makes the background optional
	opts = Options{Content: "menu.toml", NoZone: true}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("NoZone without background should pass: %v", err)
	}
	if opts.Format != menu.DefaultFormat {
		t.Errorf("Format default = %q, want %q", opts.Format, menu.DefaultFormat)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats default = %v, want [svg]", opts.Formats)
	}

	// Bad format preset
	opts = Options{Content: "menu.toml", NoZone: true, Format: "poster"}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("Unknown format preset should fail")
	}

	// Bad accent color
	opts = Options{Content: "menu.toml", NoZone: true, AccentColor: "red"}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("Non-hex accent color should fail")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Content: "menu.toml", NoZone: true, Formats: []string{"json"}}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	format := opts.Format

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Format != format {
		t.Error("Format changed on second call")
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != "json" {
		t.Error("Formats changed on second call")
	}
}

func TestOptionsIsRemoteBackground(t *testing.T) {
	tests := []struct {
		background string
		remote     bool
	}{
		{"https://images.example.com/bg.png", true},
		{"http://localhost:8080/bg", true},
		{"backgrounds/tavern.png", false},
		{"/abs/path/bg.jpg", false},
	}
	for _, tt := range tests {
		opts := Options{Background: tt.background}
		if opts.IsRemoteBackground() != tt.remote {
			t.Errorf("IsRemoteBackground(%q) = %v, want %v", tt.background, !tt.remote, tt.remote)
		}
	}
}

// writeTestImage writes a PNG with a quiet middle and busy top/bottom
// stripes, so detection finds a real zone.
func writeTestImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{240, 235, 225, 255}
			if (y < h/5 || y > h*4/5) && (x/50+y/50)%2 == 0 {
				c = color.RGBA{10, 10, 10, 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeTestContent(t *testing.T, path string) {
	t.Helper()
	content := `title = "Cocktail Menu"
footer = "Served daily"

[[sections]]
title = "Classics"

[[sections.items]]
name = "Old Fashioned"
price = "$14"
description = "bourbon, demerara, bitters"

[[sections.items]]
name = "Manhattan"
price = "$15"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil, nil)
}

func TestRunnerExecute(t *testing.T) {
	dir := t.TempDir()
	bg := filepath.Join(dir, "bg.png")
	content := filepath.Join(dir, "menu.toml")
	writeTestImage(t, bg, 800, 1200)
	writeTestContent(t, content)

	r := testRunner(t)
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{
		Background: bg,
		Content:    content,
		Format:     "slide",
		Formats:    []string{FormatSVG, FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if result.Zone == nil {
		t.Fatal("Zone should be measured")
	}
	if !result.ZoneDetected {
		t.Error("quiet middle band should be detected, not fallback")
	}
	if result.ImageHash == "" || result.LayoutHash == "" {
		t.Error("hashes should be populated")
	}
	if result.Stats.ElementCount == 0 {
		t.Error("layout should produce elements")
	}

	svg := string(result.Artifacts[FormatSVG])
	if !strings.Contains(svg, "Cocktail Menu") {
		t.Error("svg should contain the title")
	}
	if !strings.Contains(svg, "<image href=\"data:image/png;base64,") {
		t.Error("svg should embed the background")
	}
	if !strings.Contains(string(result.Artifacts[FormatJSON]), `"fontSize"`) {
		t.Error("json artifact should use the layout contract")
	}
}

func TestRunnerExecuteCaching(t *testing.T) {
	dir := t.TempDir()
	bg := filepath.Join(dir, "bg.png")
	content := filepath.Join(dir, "menu.toml")
	writeTestImage(t, bg, 600, 900)
	writeTestContent(t, content)

	r := testRunner(t)
	defer r.Close()

	opts := Options{Background: bg, Content: content, Format: "slide", Formats: []string{FormatJSON}}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.ZoneHit || first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Error("first run should miss every cache")
	}

	second, err := r.Execute(context.Background(), Options{Background: bg, Content: content, Format: "slide", Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.ZoneHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit every cache: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatJSON], second.Artifacts[FormatJSON]) {
		t.Error("cached artifact differs from rendered artifact")
	}

	// Refresh bypasses the caches
	third, err := r.Execute(context.Background(), Options{Background: bg, Content: content, Format: "slide", Formats: []string{FormatJSON}, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.ZoneHit || third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Error("refresh run should bypass every cache")
	}
}

func TestRunnerExecuteNoZone(t *testing.T) {
	dir := t.TempDir()
	content := filepath.Join(dir, "menu.toml")
	writeTestContent(t, content)

	r := testRunner(t)
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{
		Content: content,
		NoZone:  true,
		Formats: []string{FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if result.Zone != nil {
		t.Error("NoZone run should not carry a zone")
	}
	if result.ImageHash != "" {
		t.Error("NoZone run without background should have no image hash")
	}
}

func TestRunnerExecuteZoneOverride(t *testing.T) {
	dir := t.TempDir()
	bg := filepath.Join(dir, "bg.png")
	content := filepath.Join(dir, "menu.toml")
	writeTestImage(t, bg, 800, 1200)
	writeTestContent(t, content)

	r := testRunner(t)
	defer r.Close()

	zone := &vision.ClearZone{Top: 100, Bottom: 900, Left: 50, Right: 750}
	result, err := r.Execute(context.Background(), Options{
		Background: bg,
		Content:    content,
		Format:     "slide",
		Zone:       zone,
		Formats:    []string{FormatJSON},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Zone != zone {
		t.Error("explicit zone should pass through untouched")
	}
	if result.ZoneDetected {
		t.Error("explicit zone is not a detection")
	}
	if result.Stats.DetectTime != 0 {
		t.Error("detection should be skipped with an explicit zone")
	}
}

func TestRunnerExecuteWritesRecord(t *testing.T) {
	dir := t.TempDir()
	bg := filepath.Join(dir, "bg.png")
	content := filepath.Join(dir, "menu.toml")
	writeTestImage(t, bg, 600, 900)
	writeTestContent(t, content)

	st := store.NewMemoryStore()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, st, nil)
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{
		Background: bg,
		Content:    content,
		Format:     "slide",
		Formats:    []string{FormatJSON},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.RecordID == "" {
		t.Fatal("record should be written")
	}

	rec, err := st.Get(context.Background(), result.RecordID)
	if err != nil {
		t.Fatalf("record not found: %v", err)
	}
	if rec.Title != "Cocktail Menu" || rec.Format != "slide" {
		t.Errorf("record = %+v", rec)
	}
	if rec.ImageHash != result.ImageHash || rec.LayoutHash != result.LayoutHash {
		t.Error("record hashes should match result hashes")
	}
}

func TestRunnerDetectEmptyImage(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	if _, _, err := r.Detect(context.Background(), nil); err == nil {
		t.Error("empty image should fail detection")
	}
}
