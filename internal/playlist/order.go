package playlist

import (
	"log/slog"
	"sort"

	"syphon/internal/logging"
	"syphon/internal/textutil"
)

// SortByIndex orders downloaded file names by their numeric prefix. Equal
// indexes are broken by the full name; names without a parseable prefix
// follow all others in lexical order.
func SortByIndex(names []string, logger *slog.Logger) []string {
	type indexed struct {
		name  string
		index int
	}
	parsed := make([]indexed, 0, len(names))
	var unparsed []string
	for _, name := range names {
		index, err := textutil.ParseIndex(name)
		if err != nil {
			if logger != nil {
				logger.Debug("playlist entry has no index; ordered last",
					logging.String("file", name),
					logging.Error(err),
				)
			}
			unparsed = append(unparsed, name)
			continue
		}
		parsed = append(parsed, indexed{name: name, index: index})
	}
	sort.Slice(parsed, func(i, j int) bool {
		if parsed[i].index != parsed[j].index {
			return parsed[i].index < parsed[j].index
		}
		return parsed[i].name < parsed[j].name
	})
	sort.Strings(unparsed)

	ordered := make([]string, 0, len(names))
	for _, entry := range parsed {
		ordered = append(ordered, entry.name)
	}
	return append(ordered, unparsed...)
}
