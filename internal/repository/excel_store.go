package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/carrierwatch/carrierwatch/internal/domain"
)

// Column order is fixed for compatibility with spreadsheets the user edits
// by hand. Header names are the French originals of the file format.
var baseColumns = []string{
	"Code candidature",
	"Entreprise",
	"Thématique",
	"Domaine",
	"Statut",
	"Date d'application",
	"Début de stage",
	"Dernier mail",
	"Source",
}

const (
	dateLayout = "2006-01-02"
)

// ExcelStore persists the applications table as a single-sheet xlsx file.
// Unknown columns found in the file are carried through Application.Extra
// and written back on save.
type ExcelStore struct {
	path   string
	labels domain.LabelSet

	// extra column order observed at load time, so a load-modify-save cycle
	// keeps hand-added columns where the user put them
	extraCols []string
}

func NewExcelStore(path string, labels domain.LabelSet) *ExcelStore {
	return &ExcelStore{path: path, labels: labels}
}

// Load reads the whole table. A missing file is an empty table, not an
// error: first run starts from scratch like the original spreadsheet did.
func (s *ExcelStore) Load(ctx context.Context) ([]domain.Application, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return []domain.Application{}, nil
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrStoreRead, s.path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []domain.Application{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: reading rows: %v", domain.ErrStoreRead, err)
	}
	if len(rows) == 0 {
		return []domain.Application{}, nil
	}

	header := rows[0]
	known := lo.SliceToMap(baseColumns, func(c string) (string, bool) { return c, true })
	colIndex := make(map[string]int, len(header))
	s.extraCols = s.extraCols[:0]
	for i, name := range header {
		if name == "" {
			continue
		}
		colIndex[name] = i
		if !known[name] {
			s.extraCols = append(s.extraCols, name)
		}
	}

	apps := make([]domain.Application, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		app := domain.Application{
			Code:    cell(row, colIndex, "Code candidature"),
			Company: cell(row, colIndex, "Entreprise"),
			Topic:   cell(row, colIndex, "Thématique"),
			Domain:  cell(row, colIndex, "Domaine"),
			Source:  domain.Source(cell(row, colIndex, "Source")),
		}
		if app.Source == "" {
			app.Source = domain.SourceManual
		}
		if status, ok := domain.ParseStatus(cell(row, colIndex, "Statut")); ok {
			app.Status = status
		}
		app.ApplicationDate = parseDate(cell(row, colIndex, "Date d'application"))
		app.InternshipStart = parseDate(cell(row, colIndex, "Début de stage"))
		app.LastEmail = parseTimestamp(cell(row, colIndex, "Dernier mail"))
		for _, name := range s.extraCols {
			value := cell(row, colIndex, name)
			if value == "" {
				continue
			}
			if app.Extra == nil {
				app.Extra = make(map[string]string)
			}
			app.Extra[name] = value
		}
		apps = append(apps, app)
	}
	return apps, nil
}

// Save writes the full snapshot. The sheet is rebuilt in a temp file and
// renamed into place so a failed save never truncates the table.
func (s *ExcelStore) Save(ctx context.Context, apps []domain.Application) error {
	extraCols := s.extraColumns(apps)
	header := append(append([]string{}, baseColumns...), extraCols...)

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := setRow(f, sheet, 1, lo.Map(header, func(h string, _ int) any { return h })); err != nil {
		return fmt.Errorf("%w: writing header: %v", domain.ErrStoreWrite, err)
	}
	for i, app := range apps {
		row := []any{
			app.Code,
			app.Company,
			app.Topic,
			app.Domain,
			s.labels[app.Status],
			formatDate(app.ApplicationDate),
			formatDate(app.InternshipStart),
			formatTimestamp(app.LastEmail),
			string(app.Source),
		}
		for _, name := range extraCols {
			row = append(row, app.Extra[name])
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return fmt.Errorf("%w: writing row %d: %v", domain.ErrStoreWrite, i+2, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
	}
	tmp := s.path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("%w: saving %s: %v", domain.ErrStoreWrite, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: replacing %s: %v", domain.ErrStoreWrite, s.path, err)
	}
	s.extraCols = extraCols
	return nil
}

// extraColumns keeps the order observed at load time and appends any new
// keys alphabetically.
func (s *ExcelStore) extraColumns(apps []domain.Application) []string {
	seen := lo.SliceToMap(s.extraCols, func(c string) (string, bool) { return c, true })
	cols := append([]string{}, s.extraCols...)
	added := []string{}
	for _, app := range apps {
		for name := range app.Extra {
			if !seen[name] {
				seen[name] = true
				added = append(added, name)
			}
		}
	}
	sort.Strings(added)
	return append(cols, added...)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, start, &values)
}

func cell(row []string, colIndex map[string]int, name string) string {
	i, ok := colIndex[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func isEmptyRow(row []string) bool {
	return !lo.SomeBy(row, func(v string) bool { return v != "" })
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil
	}
	return &t
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// parseTimestamp accepts RFC3339 (what sync writes) and plain dates (what a
// human might type into the column).
func parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, dateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
