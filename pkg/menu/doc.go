// Package menu defines the inputs to the layout engine: the structured menu
// content tree, the brand kit (fonts and colors), and print format presets.
//
// Content and brand kits load from TOML files:
//
//	content, err := menu.LoadContent("cocktails.toml")
//	brand, err := menu.LoadBrand("brand.toml")
//	format, err := menu.FormatByName("flyer")
//
// A content file looks like:
//
//	title = "Cocktail Menu"
//	footer = "Served daily from 5pm"
//
//	[[sections]]
//	title = "Classics"
//
//	  [[sections.items]]
//	  name = "Old Fashioned"
//	  price = "$14"
//	  description = "bourbon, demerara, angostura"
//
// All types are read-only values once loaded; the layout engine never
// mutates them.
package menu
