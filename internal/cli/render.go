package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/menuforge/menuforge/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	background  string   // background image path or URL
	brand       string   // brand TOML path
	format      string   // format preset name (picker when empty and on a TTY)
	formats     []string // output formats: svg, json, pdf, png, preview
	output      string   // output file or base path
	scale       float64  // PNG scale factor
	accent      string   // accent color override
	headingFont string   // heading font family override
	bodyFont    string   // body font family override
	noZone      bool     // skip detection, use the full safe area
	noCache     bool     // disable caching
	refresh     bool     // bypass caches
}

// renderCommand creates the render command for the complete pipeline:
// detect the clear zone, compute the layout, and write rendered artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: pipeline.DefaultPNGScale}

	cmd := &cobra.Command{
		Use:   "render [content]",
		Short: "Generate menu artifacts from content and a background",
		Long: `Render runs the complete pipeline: measure the background's clear
zone, lay out the menu text inside it, and write the results in one or
more output formats. When no format preset is given and stdout is a
terminal, an interactive picker is shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if opts.format == "" {
				format, err := chooseFormat()
				if err != nil {
					return err
				}
				opts.format = format
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.background, "background", "b", "", "background image path or URL")
	cmd.Flags().StringVar(&opts.brand, "brand", "", "brand TOML file")
	cmd.Flags().StringVar(&opts.format, "format", "", "format preset: flyer, tabloid, slide")
	cmd.Flags().StringVarP(&formatsStr, "outputs", "f", "", "output format(s): svg (default), json, pdf, png, preview (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().StringVar(&opts.accent, "accent", "", "accent color override (#rrggbb)")
	cmd.Flags().StringVar(&opts.headingFont, "heading-font", "", "heading font family override")
	cmd.Flags().StringVar(&opts.bodyFont, "body-font", "", "body font family override")
	cmd.Flags().BoolVar(&opts.noZone, "no-zone", false, "skip zone detection, use the full safe area")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass caches and regenerate")

	return cmd
}

// chooseFormat resolves the format preset when the flag was omitted: the
// interactive picker on a terminal, the default preset otherwise.
func chooseFormat() (string, error) {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return "", nil // pipeline default applies
	}
	return pickFormat()
}

func (c *CLI) runRender(cmd *cobra.Command, contentPath string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Background:  opts.background,
		Content:     contentPath,
		Brand:       opts.brand,
		Format:      opts.format,
		NoZone:      opts.noZone,
		AccentColor: opts.accent,
		HeadingFont: opts.headingFont,
		BodyFont:    opts.bodyFont,
		Formats:     opts.formats,
		Scale:       opts.scale,
		Refresh:     opts.refresh,
		Logger:      logger,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Generating menu...")
	spinner.Start()
	result, err := runner.Execute(ctx, popts)
	spinner.Stop()
	if spinner.Cancelled() {
		return ctx.Err()
	}
	if err != nil {
		return err
	}

	if result.Zone != nil {
		printZone(*result.Zone, result.ZoneDetected)
	}

	base := basePath(opts.output, contentPath)
	for _, format := range popts.Formats {
		data, ok := result.Artifacts[format]
		if !ok {
			continue
		}
		path := artifactPath(base, format)
		if len(popts.Formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		printFile(path)
	}

	printSuccess("Generated %s menu", popts.Format)
	printStats(result.Stats.ElementCount, len(result.Artifacts), result.CacheInfo.RenderHit)
	printDetail("detect %s · layout %s · render %s",
		result.Stats.DetectTime.Round(msRound),
		result.Stats.LayoutTime.Round(msRound),
		result.Stats.RenderTime.Round(msRound))
	if result.RecordID != "" {
		printKeyValue("record", result.RecordID)
	}
	return nil
}
