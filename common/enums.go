// The only reason this package exists is that both the configuration and the
// class injection core need content kinds and I do not want the core to depend
// on program configuration. So enums live in their own package.
package common

//go:generate go tool go-enum --names --marshal

// Kind of generated content item, decides which override set applies.
// ENUM(page, article)
type ContentKind int
