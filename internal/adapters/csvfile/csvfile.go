// Package csvfile reads and writes the track catalog as a CSV dataset file.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/resonance/internal/core/domain"
	"github.com/ewilliams-labs/resonance/internal/logging"
)

const (
	colID          = "id"
	colName        = "name"
	colArtist      = "artist"
	colAlbum       = "album"
	colReleaseDate = "release_date"
)

var metadataColumns = []string{colID, colName, colArtist, colAlbum, colReleaseDate}

// Store is a dataset file on disk. It satisfies ports.TrackRepository.
type Store struct {
	path string
}

// NewStore returns a Store backed by path. The file is not touched until
// LoadDataset or SaveCatalog is called.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// LoadDataset reads the file and returns the complete rows for features
// (domain.DefaultFeatures when empty).
func (s *Store) LoadDataset(ctx context.Context, features []string) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("csvfile: open dataset: %w", err)
	}
	defer f.Close()

	ds, dropped, err := Decode(f, features)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("csvfile: %s: %w", s.path, err)
	}
	if dropped > 0 {
		logging.Warn().
			Str("path", s.path).
			Int("dropped", dropped).
			Int("kept", ds.Len()).
			Msg("dropped rows with missing values")
	}
	return ds, nil
}

// SaveCatalog overwrites the file with tracks, creating parent directories
// as needed. source is not recorded in the file format.
func (s *Store) SaveCatalog(ctx context.Context, source string, tracks []domain.Track) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := create(s.path)
	if err != nil {
		return err
	}

	if err := Encode(f, tracks); err != nil {
		f.Close()
		return fmt.Errorf("csvfile: write dataset: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csvfile: close dataset: %w", err)
	}

	logging.Info().
		Str("path", s.path).
		Str("source", source).
		Int("tracks", len(tracks)).
		Msg("dataset written")
	return nil
}

// Decode parses a dataset with a header row. It fails with a
// *domain.SchemaError when id, name, artist or any requested feature column
// is absent. Rows with a blank, NaN or null value in a requested field are
// dropped and counted; any other non-numeric feature value is an error.
// Extra columns that parse as numbers are kept as additional features.
func Decode(r io.Reader, features []string) (domain.Dataset, int, error) {
	features = domain.ResolveFeatures(features)

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Dataset{}, 0, &domain.SchemaError{Missing: append([]string{colID, colName, colArtist}, features...)}
		}
		return domain.Dataset{}, 0, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	required := append([]string{colID, colName, colArtist}, features...)
	var missing []string
	for _, name := range required {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return domain.Dataset{}, 0, &domain.SchemaError{Missing: missing}
	}

	inUse := make(map[string]struct{}, len(features))
	for _, name := range features {
		inUse[name] = struct{}{}
	}

	columns := make([]string, 0, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
		if isMetadata(name) || name == "" || index[name] != i {
			continue
		}
		columns = append(columns, name)
	}

	var tracks []domain.Track
	dropped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Dataset{}, 0, fmt.Errorf("read record: %w", err)
		}
		line, _ := reader.FieldPos(0)

		track := domain.Track{
			ID:     field(record, index, colID),
			Name:   field(record, index, colName),
			Artist: field(record, index, colArtist),
		}
		if track.ID == "" || track.Name == "" || track.Artist == "" {
			dropped++
			continue
		}
		track.Album = field(record, index, colAlbum)
		track.ReleaseDate = field(record, index, colReleaseDate)

		for _, name := range columns {
			raw := field(record, index, name)
			_, wanted := inUse[name]
			if isMissing(raw) {
				continue
			}
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsInf(value, 0) {
				if wanted {
					return domain.Dataset{}, 0, fmt.Errorf("line %d column %q: invalid number %q", line, name, raw)
				}
				continue
			}
			if math.IsNaN(value) {
				continue
			}
			track.SetFeature(name, value)
		}

		if !track.HasFeatures(features) {
			dropped++
			continue
		}
		tracks = append(tracks, track)
	}

	return domain.NewDataset(columns, tracks), dropped, nil
}

// Encode writes tracks with the header
// id,name,artist,album,release_date,<DefaultFeatures>,<extra features sorted>.
// Absent values are written as empty fields.
func Encode(w io.Writer, tracks []domain.Track) error {
	featureColumns := append([]string(nil), domain.DefaultFeatures...)
	known := make(map[string]struct{}, len(featureColumns))
	for _, name := range featureColumns {
		known[name] = struct{}{}
	}
	var extra []string
	for _, t := range tracks {
		for name := range t.Features {
			if _, ok := known[name]; ok {
				continue
			}
			known[name] = struct{}{}
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	featureColumns = append(featureColumns, extra...)

	writer := csv.NewWriter(w)
	if err := writer.Write(append(append([]string(nil), metadataColumns...), featureColumns...)); err != nil {
		return err
	}

	record := make([]string, len(metadataColumns)+len(featureColumns))
	for _, t := range tracks {
		record[0] = t.ID
		record[1] = t.Name
		record[2] = t.Artist
		record[3] = t.Album
		record[4] = t.ReleaseDate
		for i, name := range featureColumns {
			record[len(metadataColumns)+i] = ""
			if v, ok := t.Feature(name); ok {
				record[len(metadataColumns)+i] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteRecommendations exports query results as
// seed_id,rank,id,name,artist,similarity with 1-based ranks.
func WriteRecommendations(path string, results []domain.SeedResult) error {
	f, err := create(path)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{"seed_id", "rank", "id", "name", "artist", "similarity"}); err != nil {
		f.Close()
		return fmt.Errorf("csvfile: write recommendations: %w", err)
	}
	for _, result := range results {
		for i, rec := range result.Recommendations {
			row := []string{
				result.Seed.ID,
				strconv.Itoa(i + 1),
				rec.ID,
				rec.Name,
				rec.Artist,
				strconv.FormatFloat(rec.Similarity, 'f', 6, 64),
			}
			if err := writer.Write(row); err != nil {
				f.Close()
				return fmt.Errorf("csvfile: write recommendations: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return fmt.Errorf("csvfile: write recommendations: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csvfile: close recommendations: %w", err)
	}
	return nil
}

func create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("csvfile: create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csvfile: create file: %w", err)
	}
	return f, nil
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isMissing(raw string) bool {
	switch strings.ToLower(raw) {
	case "", "nan", "null", "none", "na":
		return true
	}
	return false
}

func isMetadata(name string) bool {
	for _, m := range metadataColumns {
		if m == name {
			return true
		}
	}
	return false
}
