package menu

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/menuforge/menuforge/pkg/errors"
)

// Content is the structured text of a menu. Sections and items keep their
// file order; the layout engine emits them top to bottom.
type Content struct {
	Title    string    `toml:"title" json:"title"`
	Subtitle string    `toml:"subtitle" json:"subtitle,omitempty"`
	Sections []Section `toml:"sections" json:"sections"`
	Footer   string    `toml:"footer" json:"footer,omitempty"`
}

// Section is a titled group of items.
type Section struct {
	Title string `toml:"title" json:"title"`
	Items []Item `toml:"items" json:"items"`
}

// Item is a single menu entry. Price and Description are optional.
type Item struct {
	Name        string `toml:"name" json:"name"`
	Price       string `toml:"price" json:"price,omitempty"`
	Description string `toml:"description" json:"description,omitempty"`
}

// ItemCount returns the total number of items across all sections.
func (c *Content) ItemCount() int {
	n := 0
	for _, s := range c.Sections {
		n += len(s.Items)
	}
	return n
}

// DescriptionCount returns the number of items carrying a description.
func (c *Content) DescriptionCount() int {
	n := 0
	for _, s := range c.Sections {
		for _, it := range s.Items {
			if it.Description != "" {
				n++
			}
		}
	}
	return n
}

// LoadContent reads and validates a menu content file.
func LoadContent(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "content file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidContent, err, "cannot read content file: %s", path)
	}
	return ParseContent(data)
}

// ParseContent parses TOML content bytes and validates the result.
func ParseContent(data []byte) (*Content, error) {
	var c Content
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidContent, err, "invalid content file")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the minimal structural requirements. Zero sections is
// allowed (title-only menus lay out fine); untitled menus and nameless
// items are not.
func (c *Content) Validate() error {
	if c.Title == "" {
		return errors.New(errors.ErrCodeInvalidContent, "menu title is required")
	}
	for si, s := range c.Sections {
		if s.Title == "" {
			return errors.New(errors.ErrCodeInvalidContent, "section %d has no title", si)
		}
		for ii, it := range s.Items {
			if it.Name == "" {
				return errors.New(errors.ErrCodeInvalidContent, "item %d in section %q has no name", ii, s.Title)
			}
		}
	}
	return nil
}
