package preprocess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	apperrors "duach/internal/errors"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadTableAuto_UTF8CSV(t *testing.T) {
	csv := "שם,משכורת_₪\nדנה,8500\nיוסי,1200\n"
	path := writeTempFile(t, "data.csv", []byte(csv))

	raw, err := ReadTableAuto(nil, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"שם", "משכורת_₪"}, raw.Columns)
	require.Equal(t, 2, raw.RowCount())
	assert.Equal(t, "דנה", raw.Rows[0][0].Text)
	assert.Equal(t, "8500", raw.Rows[0][1].Text)
}

func TestReadTableAuto_BOMStripped(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b\n1,2\n")...)
	path := writeTempFile(t, "bom.csv", data)

	raw, err := ReadTableAuto(nil, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, raw.Columns)
}

func TestReadTableAuto_Windows1255CSV(t *testing.T) {
	encoder := charmap.Windows1255.NewEncoder()
	encoded, err := encoder.String("שם,עיר\nדנה,חיפה\n")
	require.NoError(t, err)
	path := writeTempFile(t, "legacy.csv", []byte(encoded))

	raw, rerr := ReadTableAuto(nil, path)
	require.NoError(t, rerr)
	assert.Equal(t, []string{"שם", "עיר"}, raw.Columns)
	assert.Equal(t, "חיפה", raw.Rows[0][1].Text)
}

func TestReadTableAuto_SemicolonSeparator(t *testing.T) {
	path := writeTempFile(t, "semi.csv", []byte("a;b;c\n1;2;3\n"))

	raw, err := ReadTableAuto(nil, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, raw.Columns)
	assert.Equal(t, "2", raw.Rows[0][1].Text)
}

func TestReadTableAuto_TabSeparator(t *testing.T) {
	path := writeTempFile(t, "tabs.csv", []byte("a\tb\n1\t2\n"))

	raw, err := ReadTableAuto(nil, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, raw.Columns)
}

func TestReadTableAuto_RaggedRowsKept(t *testing.T) {
	path := writeTempFile(t, "ragged.csv", []byte("a,b,c\n1,2\n1,2,3,4\n"))

	raw, err := ReadTableAuto(nil, path)
	require.NoError(t, err)
	assert.Equal(t, 2, raw.RowCount(), "rows with differing field counts are kept")
}

func TestReadTableAuto_EmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.csv", nil)

	raw, err := ReadTableAuto(nil, path)
	require.NoError(t, err)
	assert.True(t, raw.Empty())
}

func TestReadTableAuto_UnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "data.json", []byte("{}"))

	_, err := ReadTableAuto(nil, path)
	require.Error(t, err)
	assert.True(t, apperrors.IsFatal(err), "an unreadable input fails the whole report")
}

func TestReadTableAuto_EmptyPath(t *testing.T) {
	_, err := ReadTableAuto(nil, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsFatal(err))
}

func TestReadTableAuto_MissingFile(t *testing.T) {
	_, err := ReadTableAuto(nil, filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestSniffSeparator(t *testing.T) {
	tests := []struct {
		name string
		line string
		want rune
	}{
		{"comma", "a,b,c\n", ','},
		{"semicolon", "a;b;c\n", ';'},
		{"tab", "a\tb\tc\n", '\t'},
		{"pipe", "a|b|c\n", '|'},
		{"comma wins ties", "a\n", ','},
		{"majority wins", "a,b;c,d\n", ','},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sniffSeparator([]byte(tt.line)))
		})
	}
}
