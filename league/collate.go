package league

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// newCollator returns a Korean-locale collator. Collators are not safe
// for concurrent use, so every sort builds its own.
func newCollator() *collate.Collator {
	return collate.New(language.Korean)
}
