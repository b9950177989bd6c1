package catalog

// Song is one conditioned input file. Title and Artist are empty until a
// later resolution pass fills them.
type Song struct {
	Input       string
	Fingerprint []byte
	Title       string
	Artist      string
}

// Resolved reports whether both title and artist are known.
func (s Song) Resolved() bool {
	return s.Title != "" && s.Artist != ""
}

// PlaylistKind distinguishes source-derived playlists from user-defined ones.
type PlaylistKind string

const (
	PlaylistAuto   PlaylistKind = "auto"
	PlaylistCustom PlaylistKind = "custom"
)

// Playlist is an ordered list of output filenames.
type Playlist struct {
	Name  string
	Kind  PlaylistKind
	Songs []string
}

// Stats summarizes catalog contents for status reporting.
type Stats struct {
	Songs      int
	Resolved   int
	Playlists  int
	Unresolved int
}
