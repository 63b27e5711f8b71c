// Package assets provides the stylesheets injected into generated pages.
//
// Built-in styles are "default" (page typography) and "notebook" (cell and
// output layout for converted notebooks). Resolve also accepts a path to a
// CSS file on disk, so sites can ship their own stylesheet.
//
// Style names are matched case-insensitively and may only contain letters,
// digits, hyphens and underscores, so a name can never reach outside the
// embedded styles directory. Paths given explicitly by the user are read
// as-is.
package assets
