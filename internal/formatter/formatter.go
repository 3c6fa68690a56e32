// package formatter renders watchlists to export formats (JSON, YAML, CSV, Markdown, plain text)
// and reads them back for import
package formatter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/watchlog/internal/models"
	"github.com/desertthunder/watchlog/internal/shared"
	"gopkg.in/yaml.v3"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat accepts a format name or a common file extension.
func ParseFormat(v string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(v), ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, v)
	}
}

// Ext is the file extension used for the format.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Export is a snapshot of both watchlists grouped by bucket.
type Export struct {
	ExportedAt time.Time      `json:"exportedAt" yaml:"exported_at"`
	Movies     models.Buckets `json:"movies" yaml:"movies"`
	Series     models.Buckets `json:"series" yaml:"series"`
}

// Section pairs a kind with its buckets, movies first.
type Section struct {
	Kind    models.Kind
	Buckets models.Buckets
}

func (e *Export) Sections() []Section {
	return []Section{
		{Kind: models.KindMovie, Buckets: e.Movies},
		{Kind: models.KindSeries, Buckets: e.Series},
	}
}

// Render encodes export in the given format.
func Render(export *Export, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return shared.MarshalJSON(export, true)
	case FormatYAML:
		return ExportToYAML(export)
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// ExportToYAML encodes the export with two-space indentation.
func ExportToYAML(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(export); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// CSVHeaders are the columns written by [ExportToCSV] and read by [ParseCSV].
var CSVHeaders = []string{"Kind", "Title", "Summary", "Duration", "Episodes", "ImageURL", "Status", "Genres"}

// genreSep joins genre names inside a single CSV cell.
const genreSep = "|"

// ExportToCSV writes one row per item across both kinds and all buckets.
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(CSVHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, sec := range export.Sections() {
		for _, status := range models.Statuses {
			for _, it := range sec.Buckets.Get(status) {
				episodes := ""
				if it.Episodes != nil {
					episodes = strconv.Itoa(*it.Episodes)
				}
				names := make([]string, len(it.Genres))
				for i, g := range it.Genres {
					names[i] = g.Name
				}
				record := []string{
					string(sec.Kind),
					it.Title,
					it.Summary,
					strconv.Itoa(it.Duration),
					episodes,
					it.ImageURL,
					string(status),
					strings.Join(names, genreSep),
				}
				if err := writer.Write(record); err != nil {
					return nil, fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a heading per kind and a list per bucket.
func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Watchlog\n\n")
	if !export.ExportedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Exported**: %s\n\n", export.ExportedAt.Format(time.RFC1123)))
	}

	for _, sec := range export.Sections() {
		buf.WriteString(fmt.Sprintf("## %s\n\n", strings.ToUpper(sec.Kind.Plural()[:1])+sec.Kind.Plural()[1:]))
		if sec.Buckets.Len() == 0 {
			buf.WriteString(fmt.Sprintf("No %s found.\n\n", sec.Kind.Plural()))
			continue
		}
		for _, status := range models.Statuses {
			items := sec.Buckets.Get(status)
			buf.WriteString(fmt.Sprintf("### %s (%d)\n\n", status.Label(), len(items)))
			for i, it := range items {
				extra := ""
				if it.Episodes != nil {
					extra = fmt.Sprintf(", %d episodes", *it.Episodes)
				}
				buf.WriteString(fmt.Sprintf("%d. **%s** [%s%s] _%s_\n", i+1, it.Title, shared.FormatMinutes(it.Duration), extra, it.GenreNames()))
			}
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders a compact plain text listing.
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	for _, sec := range export.Sections() {
		buf.WriteString(fmt.Sprintf("%s: %d\n", sec.Kind.Label(), sec.Buckets.Len()))
		for _, status := range models.Statuses {
			for _, it := range sec.Buckets.Get(status) {
				buf.WriteString(fmt.Sprintf("  [%s] %s (%s)\n", status.Label(), it.Title, shared.FormatMinutes(it.Duration)))
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// WriteExport renders export and writes it to path.
//
// Defaults to watchlog_export.{ext} as the filename.
func WriteExport(export *Export, format Format, path string) (string, error) {
	if path == "" {
		path = "watchlog_export." + format.Ext()
	}

	data, err := Render(export, format)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// Row is one parsed CSV record. Numeric cells stay text so they can be validated as typed.
type Row struct {
	Line     int
	Kind     models.Kind
	Title    string
	Summary  string
	Duration string
	Episodes string
	ImageURL string
	Status   models.Status
	Genres   []string
}

// ParseCSV reads rows in the layout written by [ExportToCSV].
//
// Header names are matched case-insensitively and in any order; Kind and Status may be blank
// and default to movie and TO_WATCH.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty CSV", shared.ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["title"]; !ok {
		return nil, fmt.Errorf("%w: CSV has no Title column", shared.ErrInvalidInput)
	}

	cell := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []Row
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		row := Row{
			Line:     line,
			Kind:     models.KindMovie,
			Title:    cell(rec, "title"),
			Summary:  cell(rec, "summary"),
			Duration: cell(rec, "duration"),
			Episodes: cell(rec, "episodes"),
			ImageURL: cell(rec, "imageurl"),
			Status:   models.StatusToWatch,
		}
		if v := cell(rec, "kind"); v != "" {
			if row.Kind, err = models.ParseKind(v); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", shared.ErrInvalidInput, line, err)
			}
		}
		if v := cell(rec, "status"); v != "" {
			if row.Status, err = models.ParseStatus(v); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", shared.ErrInvalidInput, line, err)
			}
		}
		for _, g := range strings.Split(cell(rec, "genres"), genreSep) {
			if g = strings.TrimSpace(g); g != "" {
				row.Genres = append(row.Genres, g)
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Field is one labelled line of the item detail view.
type Field struct {
	Label string
	Value string
}

// NoImage is shown in place of a missing poster.
const NoImage = "No Image"

// ItemDetail lists what the info view shows for it. Episodes appear only when the item carries them.
func ItemDetail(it models.Item) []Field {
	image := it.ImageURL
	if image == "" {
		image = NoImage
	}

	fields := []Field{
		{Label: "Title", Value: it.Title},
		{Label: "Image", Value: image},
		{Label: "Duration", Value: fmt.Sprintf("%d min", it.Duration)},
	}
	if it.Episodes != nil {
		fields = append(fields, Field{Label: "Episodes", Value: strconv.Itoa(*it.Episodes)})
	}
	fields = append(fields,
		Field{Label: "Genres", Value: it.GenreNames()},
		Field{Label: "Status", Value: it.Status.Label()},
		Field{Label: "Summary", Value: it.Summary},
	)
	return fields
}

// ItemDetailText renders [ItemDetail] as "Label: Value" lines.
func ItemDetailText(it models.Item) string {
	var b strings.Builder
	for _, f := range ItemDetail(it) {
		fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
	}
	return b.String()
}
