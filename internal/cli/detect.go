package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/menuforge/menuforge/pkg/vision"
)

// detectCommand creates the detect command for measuring clear zones.
func (c *CLI) detectCommand() *cobra.Command {
	var noCache, refresh bool

	cmd := &cobra.Command{
		Use:   "detect [image]",
		Short: "Measure the clear zone of a background image",
		Long: `Detect scans a background image for its clear zone: the largest
visually quiet region able to host overlay text. Busy images fall back
to a fixed fractional zone so there is always somewhere to put text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDetect(cmd, args[0], noCache, refresh)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the zone cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and re-measure")

	return cmd
}

func (c *CLI) runDetect(cmd *cobra.Command, path string, noCache, refresh bool) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	p := newProgress(logger)
	zone, detected, hit, err := runner.DetectWithCacheInfo(ctx, data, refresh)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Measured %s", filepath.Base(path)))

	printZone(zone, detected)
	printCacheStatus(hit)
	return nil
}

// printZone renders the zone geometry as a small table.
func printZone(zone vision.ClearZone, detected bool) {
	if detected {
		printSuccess("Clear zone found")
	} else {
		printWarning("No quiet region tall enough; using fallback zone")
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Edge", "Px").
		Rows(
			[]string{"top", fmt.Sprintf("%d", zone.Top)},
			[]string{"bottom", fmt.Sprintf("%d", zone.Bottom)},
			[]string{"left", fmt.Sprintf("%d", zone.Left)},
			[]string{"right", fmt.Sprintf("%d", zone.Right)},
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			}
			if col == 1 {
				return StyleNumber
			}
			return StyleValue
		})
	fmt.Println(t.Render())

	printDetail("%d x %d px usable", zone.Width(), zone.Height())
}
