package menu

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/menuforge/menuforge/pkg/errors"
)

// Brand carries the style tokens a venue's brand kit provides. Values are
// opaque to the layout engine beyond pass-through into text elements.
type Brand struct {
	HeadingFont      string `toml:"heading_font" json:"headingFont"`
	BodyFont         string `toml:"body_font" json:"bodyFont"`
	AccentColor      string `toml:"accent_color" json:"accentColor"`
	DarkColor        string `toml:"dark_color" json:"darkColor"`
	DescriptionColor string `toml:"description_color" json:"descriptionColor"`
}

// DefaultBrand returns the built-in brand kit used when no file is supplied.
func DefaultBrand() Brand {
	return Brand{
		HeadingFont:      "Playfair Display",
		BodyFont:         "Georgia",
		AccentColor:      "#b8860b",
		DarkColor:        "#2b2b2b",
		DescriptionColor: "#6b6b6b",
	}
}

// LoadBrand reads a brand kit file. Missing fields fall back to the
// defaults, so a kit may override just an accent color.
func LoadBrand(path string) (Brand, error) {
	b := DefaultBrand()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return b, errors.Wrap(errors.ErrCodeFileNotFound, err, "brand file not found: %s", path)
		}
		return b, errors.Wrap(errors.ErrCodeInvalidBrand, err, "cannot read brand file: %s", path)
	}

	if err := toml.Unmarshal(data, &b); err != nil {
		return DefaultBrand(), errors.Wrap(errors.ErrCodeInvalidBrand, err, "invalid brand file")
	}
	if err := b.Validate(); err != nil {
		return DefaultBrand(), err
	}
	return b, nil
}

// Validate checks colors and font names for safe pass-through.
func (b Brand) Validate() error {
	for _, color := range []string{b.AccentColor, b.DarkColor, b.DescriptionColor} {
		if err := errors.ValidateHexColor(color); err != nil {
			return err
		}
	}
	for _, font := range []string{b.HeadingFont, b.BodyFont} {
		if err := errors.ValidateFontFamily(font); err != nil {
			return err
		}
	}
	return nil
}
