package inventory

import (
	"context"
	"encoding/csv"
	"os"
	"time"

	"github.com/motorlot/lotsync/pkg/errors"
)

// csvFilePermissions is the permission for rewritten source files.
const csvFilePermissions = 0o644

// CSVSource is a file-backed inventory source. The whole file is read at
// Load; write-backs mutate the in-memory rows and Flush rewrites the file.
// It is the reference Source implementation; hosted spreadsheets plug in
// behind the same interface.
type CSVSource struct {
	path    string
	headers []string
	rows    [][]string
	index   map[string]int
	dirty   bool
}

// NewCSVSource creates a source backed by the CSV file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Load implements Source.
func (s *CSVSource) Load(_ context.Context) ([]*Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.WrapIO("open", s.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	all, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", s.path, err)
	}
	if len(all) == 0 {
		return nil, errors.NewParseError("csv", s.path, "missing header row", nil)
	}

	s.headers = all[0]
	s.rows = all[1:]
	s.index = ColumnIndex(s.headers)

	records := make([]*Record, 0, len(s.rows))
	for i, row := range s.rows {
		// Row numbers are 1-based and include the header.
		records = append(records, FromRow(row, s.index, i+2))
	}
	return records, nil
}

// SetStatus implements Source.
func (s *CSVSource) SetStatus(_ context.Context, row int, message string, postID int) error {
	if err := s.setCell(row, "estatus", message); err != nil {
		return err
	}
	if postID != 0 {
		return s.setCell(row, "post_id", intCell(postID))
	}
	return nil
}

// SetSyncTime implements Source.
func (s *CSVSource) SetSyncTime(_ context.Context, row int, t time.Time) error {
	return s.setCell(row, "last_sync_time", t.Format(time.RFC3339))
}

// SetTermIDs implements Source.
func (s *CSVSource) SetTermIDs(_ context.Context, row, makeID, modelID int) error {
	if makeID != 0 {
		if err := s.setCell(row, "make_id", intCell(makeID)); err != nil {
			return err
		}
	}
	if modelID != 0 {
		return s.setCell(row, "model_id", intCell(modelID))
	}
	return nil
}

// SetFeaturedImageID implements Source.
func (s *CSVSource) SetFeaturedImageID(_ context.Context, row, id int) error {
	return s.setCell(row, "featured_image_id", intCell(id))
}

// SetGalleryIDs implements Source.
func (s *CSVSource) SetGalleryIDs(_ context.Context, row int, gallery Gallery, ids []int) error {
	key := "fotos_exterior_ids"
	if gallery == GalleryInterior {
		key = "fotos_interior_ids"
	}
	return s.setCell(row, key, JoinIDs(ids))
}

// Flush implements Source. It rewrites the file only when a write-back
// changed a cell.
func (s *CSVSource) Flush(_ context.Context) error {
	if !s.dirty {
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, csvFilePermissions)
	if err != nil {
		return errors.WrapIO("write", s.path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(s.headers); err != nil {
		return errors.WrapIO("write", s.path, err)
	}
	if err := writer.WriteAll(s.rows); err != nil {
		return errors.WrapIO("write", s.path, err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.WrapIO("write", s.path, err)
	}

	s.dirty = false
	return nil
}

// setCell writes a value into the row/column, growing the row if the column
// lies beyond its current width.
func (s *CSVSource) setCell(row int, key, value string) error {
	i := row - 2 // back to 0-based data index
	if i < 0 || i >= len(s.rows) {
		return errors.NewValidationError("row", row, "outside loaded range")
	}
	col, ok := s.index[key]
	if !ok {
		// Source sheet without the write-back column; nothing to record.
		return nil
	}
	for len(s.rows[i]) <= col {
		s.rows[i] = append(s.rows[i], "")
	}
	if s.rows[i][col] != value {
		s.rows[i][col] = value
		s.dirty = true
	}
	return nil
}

func intCell(n int) string {
	return JoinIDs([]int{n})
}
