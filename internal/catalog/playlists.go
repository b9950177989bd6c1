package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// EncodeSongs serializes a playlist's entries the way they are stored.
func EncodeSongs(songs []string) (string, error) {
	if songs == nil {
		songs = []string{}
	}
	data, err := json.Marshal(songs)
	if err != nil {
		return "", fmt.Errorf("encode playlist songs: %w", err)
	}
	return string(data), nil
}

// SavePlaylist persists p only when its serialized entries or kind differ
// from the stored row. It reports whether a write happened.
func (s *Store) SavePlaylist(ctx context.Context, p Playlist) (bool, error) {
	encoded, err := EncodeSongs(p.Songs)
	if err != nil {
		return false, err
	}

	var storedKind, storedSongs string
	err = s.db.QueryRowContext(ensureContext(ctx),
		`SELECT kind, songs FROM playlists WHERE name = ?`, p.Name,
	).Scan(&storedKind, &storedSongs)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.execWithRetry(ctx,
			`INSERT INTO playlists (name, kind, songs) VALUES (?, ?, ?)`,
			p.Name, string(p.Kind), encoded,
		); err != nil {
			if isConstraintViolation(err) {
				return false, fmt.Errorf("%w: playlist %q", ErrDuplicate, p.Name)
			}
			return false, fmt.Errorf("insert playlist: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("read playlist: %w", err)
	}

	if storedSongs == encoded && storedKind == string(p.Kind) {
		return false, nil
	}
	if _, err := s.execWithRetry(ctx,
		`UPDATE playlists SET kind = ?, songs = ? WHERE name = ?`,
		string(p.Kind), encoded, p.Name,
	); err != nil {
		return false, fmt.Errorf("update playlist: %w", err)
	}
	return true, nil
}

// GetPlaylist fetches a playlist by name. It returns nil when absent.
func (s *Store) GetPlaylist(ctx context.Context, name string) (*Playlist, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT name, kind, songs FROM playlists WHERE name = ?`, name)
	p, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	return &p, nil
}

// ListPlaylists returns every playlist ordered by name.
func (s *Store) ListPlaylists(ctx context.Context) ([]Playlist, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT name, kind, songs FROM playlists ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	var out []Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePlaylist removes a playlist row. Removing an absent row is not an error.
func (s *Store) DeletePlaylist(ctx context.Context, name string) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM playlists WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	return nil
}

// Stats returns row counts for status reporting.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	ctx = ensureContext(ctx)
	err := s.db.QueryRowContext(ctx, `SELECT
            COUNT(1),
            COALESCE(SUM(CASE WHEN title IS NOT NULL AND artist IS NOT NULL THEN 1 ELSE 0 END), 0)
        FROM songs`).Scan(&stats.Songs, &stats.Resolved)
	if err != nil {
		return Stats{}, fmt.Errorf("count songs: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM playlists`).Scan(&stats.Playlists); err != nil {
		return Stats{}, fmt.Errorf("count playlists: %w", err)
	}
	stats.Unresolved = stats.Songs - stats.Resolved
	return stats, nil
}

func scanPlaylist(scanner interface{ Scan(dest ...any) error }) (Playlist, error) {
	var (
		p       Playlist
		kind    string
		encoded string
	)
	if err := scanner.Scan(&p.Name, &kind, &encoded); err != nil {
		return Playlist{}, err
	}
	p.Kind = PlaylistKind(kind)
	if err := json.Unmarshal([]byte(encoded), &p.Songs); err != nil {
		return Playlist{}, fmt.Errorf("decode playlist %q: %w", p.Name, err)
	}
	return p, nil
}
