package preprocess

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	apperrors "duach/internal/errors"
	"duach/internal/table"
)

// candidateSeparators are tried when sniffing a CSV delimiter.
var candidateSeparators = []rune{',', ';', '\t', '|'}

// candidateEncodings are tried in order when a CSV is not valid UTF-8.
// Windows-1255 and ISO-8859-8 are the legacy Hebrew encodings.
var candidateEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"windows-1255", charmap.Windows1255},
	{"iso-8859-8", charmap.ISO8859_8},
	{"latin-1", charmap.ISO8859_1},
}

// ReadTableAuto reads a CSV or Excel file into a RawTable, auto-detecting
// the CSV separator and falling back through legacy Hebrew encodings. The
// first row is taken as the header.
func ReadTableAuto(logger *slog.Logger, path string) (*table.RawTable, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return nil, apperrors.New(apperrors.ErrTypeParsing, apperrors.ScopeFatal,
			"path must be a non-empty string", nil)
	}

	logger.Info("reading table", slog.String("path", path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(logger, path)
	case ".xlsx", ".xls":
		return readExcel(logger, path)
	default:
		return nil, apperrors.New(apperrors.ErrTypeParsing, apperrors.ScopeFatal,
			fmt.Sprintf("unsupported file extension: %s", filepath.Ext(path)), nil)
	}
}

// readCSV reads a CSV file, decoding legacy encodings and sniffing the
// separator from the header line.
func readCSV(logger *slog.Logger, path string) (*table.RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if !utf8.Valid(data) {
		decoded, name, derr := decodeLegacy(data)
		if derr != nil {
			return nil, fmt.Errorf("could not decode file with any known encoding: %w", derr)
		}
		logger.Debug("decoded CSV with legacy encoding", slog.String("encoding", name))
		data = decoded
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	sep := sniffSeparator(data)
	logger.Debug("detected CSV separator", slog.String("separator", string(sep)))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sep
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row is a recoverable-per-value condition.
			logger.Debug("skipping malformed CSV row", slog.Any("error", err))
			continue
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return &table.RawTable{}, nil
	}
	return rawFromRecords(records), nil
}

// decodeLegacy tries the candidate legacy encodings until one round-trips
// to valid UTF-8.
func decodeLegacy(data []byte) ([]byte, string, error) {
	var lastErr error
	for _, cand := range candidateEncodings {
		decoded, _, err := transform.Bytes(cand.enc.NewDecoder(), data)
		if err == nil && utf8.Valid(decoded) {
			return decoded, cand.name, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate encoding produced valid UTF-8")
	}
	return nil, "", lastErr
}

// sniffSeparator picks the candidate separator occurring most often in the
// first line. Comma wins ties by order.
func sniffSeparator(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}
	best := ','
	bestCount := 0
	for _, sep := range candidateSeparators {
		count := bytes.Count(line, []byte(string(sep)))
		if count > bestCount {
			best = sep
			bestCount = count
		}
	}
	return best
}

// readExcel reads the first sheet that contains data.
func readExcel(logger *slog.Logger, path string) (*table.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		logger.Debug("reading Excel sheet", slog.String("sheet", name),
			slog.Int("rows", len(rows)))
		return rawFromRecords(rows), nil
	}

	return &table.RawTable{}, nil
}

// rawFromRecords builds a RawTable from string records, using the first
// row as the header. Short rows are padded with nulls by ColumnValues.
func rawFromRecords(records [][]string) *table.RawTable {
	header := records[0]
	columns := make([]string, len(header))
	copy(columns, header)

	rows := make([][]table.Cell, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]table.Cell, len(record))
		for i, v := range record {
			row[i] = table.TextCell(strings.TrimSpace(v))
		}
		rows = append(rows, row)
	}
	return &table.RawTable{Columns: columns, Rows: rows}
}
