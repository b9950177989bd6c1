package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const songColumns = "input, fingerprint, title, artist"

// InsertSong registers a new song. A second insert of the same input returns
// ErrDuplicate.
func (s *Store) InsertSong(ctx context.Context, song Song) error {
	if song.Input == "" {
		return errors.New("insert song: empty input")
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO songs (input, fingerprint, title, artist) VALUES (?, ?, ?, ?)`,
		song.Input,
		song.Fingerprint,
		nullableString(song.Title),
		nullableString(song.Artist),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: song %q", ErrDuplicate, song.Input)
		}
		return fmt.Errorf("insert song: %w", err)
	}
	return nil
}

// SongInputs returns the set of registered input filenames.
func (s *Store) SongInputs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT input FROM songs`)
	if err != nil {
		return nil, fmt.Errorf("list song inputs: %w", err)
	}
	defer rows.Close()

	inputs := make(map[string]struct{})
	for rows.Next() {
		var input string
		if err := rows.Scan(&input); err != nil {
			return nil, fmt.Errorf("scan song input: %w", err)
		}
		inputs[input] = struct{}{}
	}
	return inputs, rows.Err()
}

// GetSong fetches a song by input filename. It returns nil when absent.
func (s *Store) GetSong(ctx context.Context, input string) (*Song, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+songColumns+` FROM songs WHERE input = ?`, input)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get song: %w", err)
	}
	return &song, nil
}

// ListSongs returns every song ordered by input filename.
func (s *Store) ListSongs(ctx context.Context) ([]Song, error) {
	return s.querySongs(ctx, `SELECT `+songColumns+` FROM songs ORDER BY input`)
}

// UnresolvedSongs returns songs lacking a title or an artist.
func (s *Store) UnresolvedSongs(ctx context.Context) ([]Song, error) {
	return s.querySongs(ctx, `SELECT `+songColumns+` FROM songs
        WHERE title IS NULL OR artist IS NULL ORDER BY input`)
}

// ResolvedSongs returns songs carrying both title and artist, ordered by
// (title, artist, input).
func (s *Store) ResolvedSongs(ctx context.Context) ([]Song, error) {
	return s.querySongs(ctx, `SELECT `+songColumns+` FROM songs
        WHERE title IS NOT NULL AND artist IS NOT NULL ORDER BY title, artist, input`)
}

// UpdateTags sets the title and artist of an existing song.
func (s *Store) UpdateTags(ctx context.Context, input, title, artist string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE songs SET title = ?, artist = ? WHERE input = ?`,
		nullableString(title),
		nullableString(artist),
		input,
	)
	if err != nil {
		return fmt.Errorf("update song tags: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update song tags: %q not registered", input)
	}
	return nil
}

func (s *Store) querySongs(ctx context.Context, query string, args ...any) ([]Song, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query songs: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

func scanSong(scanner interface{ Scan(dest ...any) error }) (Song, error) {
	var (
		song   Song
		title  sql.NullString
		artist sql.NullString
	)
	if err := scanner.Scan(&song.Input, &song.Fingerprint, &title, &artist); err != nil {
		return Song{}, err
	}
	song.Title = title.String
	song.Artist = artist.String
	return song, nil
}
