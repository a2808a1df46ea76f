package progress

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// displayName turns a content id such as "keeper_of-agni" into "Keeper Of Agni"
func displayName(id string) string {
	spaced := strings.NewReplacer("_", " ", "-", " ").Replace(id)
	// A Caser keeps state, so each call gets its own
	return cases.Title(language.English).String(strings.TrimSpace(spaced))
}
