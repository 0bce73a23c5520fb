package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/menuforge/menuforge/pkg/menu"
	"github.com/menuforge/menuforge/pkg/pipeline"
	"github.com/menuforge/menuforge/pkg/render"
	"github.com/menuforge/menuforge/pkg/vision"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	background  string // background image path or URL (optional with --no-zone)
	brand       string // brand TOML path
	format      string // format preset name
	output      string // output path for the layout JSON
	accent      string // accent color override (#rrggbb)
	headingFont string // heading font family override
	bodyFont    string // body font family override
	noZone      bool   // skip detection, use the full safe area
	noCache     bool   // disable caching
	refresh     bool   // bypass caches
}

// layoutCommand creates the layout command for computing positioned text
// without rendering artifacts.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := layoutOpts{format: menu.DefaultFormat}

	cmd := &cobra.Command{
		Use:   "layout [content]",
		Short: "Compute a text layout and write it as JSON",
		Long: `Layout reads menu content from a TOML file, optionally measures the
background's clear zone, and writes the positioned text elements as JSON.
The JSON element schema is stable and consumed by downstream compositors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.background, "background", "b", "", "background image path or URL")
	cmd.Flags().StringVar(&opts.brand, "brand", "", "brand TOML file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "format preset: flyer, tabloid, slide")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: content path with .layout.json)")
	cmd.Flags().StringVar(&opts.accent, "accent", "", "accent color override (#rrggbb)")
	cmd.Flags().StringVar(&opts.headingFont, "heading-font", "", "heading font family override")
	cmd.Flags().StringVar(&opts.bodyFont, "body-font", "", "body font family override")
	cmd.Flags().BoolVar(&opts.noZone, "no-zone", false, "skip zone detection, use the full safe area")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass caches and recompute")

	return cmd
}

func (c *CLI) runLayout(cmd *cobra.Command, contentPath string, opts *layoutOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	content, err := menu.LoadContent(contentPath)
	if err != nil {
		return err
	}
	brand := menu.DefaultBrand()
	if opts.brand != "" {
		if brand, err = menu.LoadBrand(opts.brand); err != nil {
			return err
		}
	}
	format, err := menu.FormatByName(opts.format)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Background:  opts.background,
		Content:     contentPath,
		Format:      opts.format,
		NoZone:      opts.noZone,
		AccentColor: opts.accent,
		HeadingFont: opts.headingFont,
		BodyFont:    opts.bodyFont,
		Refresh:     opts.refresh,
		Logger:      logger,
	}
	popts.SetLayoutDefaults()

	var zone *vision.ClearZone
	if !opts.noZone && opts.background != "" {
		image, err := runner.FetchBackground(ctx, popts)
		if err != nil {
			return err
		}
		z, detected, err := runner.Detect(ctx, image)
		if err != nil {
			return err
		}
		zone = &z
		printZone(z, detected)
	}

	p := newProgress(logger)
	l, hit, err := runner.ComputeLayoutWithCacheInfo(ctx, content, brand, format, zone, popts)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Laid out %d elements", len(l.Elements)))

	data, err := render.RenderJSON(l)
	if err != nil {
		return err
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = basePath("", contentPath) + ".layout.json"
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}

	printSuccess("Layout written")
	printFile(outputPath)
	printStats(len(l.Elements), 1, hit)
	return nil
}
