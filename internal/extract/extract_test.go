package extract

import (
	"archive/zip"
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plus and bare collapse", "call +1234567890 or 1234567890", []string{"1234567890"}},
		{"grouped with hyphens", "1-234-567-8900", []string{"12345678900"}},
		{"grouped with spaces", "reach me at 12 3456 7890 1234", []string{"12345678901234"}},
		{"grouped with no-break spaces", "1\u00a0234\u00a0567\u00a08900", []string{"12345678900"}},
		{"grouped with narrow no-break spaces", "44\u202f7700\u202f900\u202f123", []string{"447700900123"}},
		{"too short", "12345 and 987-654", []string{}},
		{"first occurrence order", "5550001111\n4440002222\n5550001111", []string{"5550001111", "4440002222"}},
		{"plus rule runs first", "9990001111 then +447700900123", []string{"447700900123", "9990001111"}},
		{"longest run wins", "1234567890123456789", []string{"123456789012345"}},
		{"no digits", "hello there", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Numbers(tt.in))
		})
	}
}

func TestNumbers_NoDuplicatesAndIdempotent(t *testing.T) {
	inputs := []string{
		"call +1234567890 or 1234567890",
		"1-234-567-8900, 12345678900, +12345678900",
		"a 79991112233 b 7 999 111 2233 c +79991112233",
		"mixed 44-7700-900-123; 447700900123\t+447700900123",
		"",
	}
	for _, in := range inputs {
		out := Numbers(in)
		seen := map[string]bool{}
		for _, n := range out {
			assert.False(t, seen[n], "duplicate %s in %v", n, out)
			seen[n] = true
			assert.Regexp(t, regexp.MustCompile(`^\d{10,15}$`), n)
		}
		again := Numbers(strings.Join(out, ","))
		assert.ElementsMatch(t, out, again, in)
	}
}

func TestApply_CustomRules(t *testing.T) {
	rules := []Rule{{Name: "dotted", Pattern: regexp.MustCompile(`\d{3}\.\d{3}\.\d{4}`), Normalize: func(s string) string {
		return strings.ReplaceAll(s, ".", "")
	}}}
	assert.Equal(t, []string{"5551234567"}, Apply(rules, "555.123.4567 and 5551234567"))
	assert.Equal(t, []string{"5551234567"}, Apply([]Rule{{Pattern: regexp.MustCompile(`\d{3}-\d{3}-\d{4}`)}}, "555-123-4567"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "12345678900", Normalize("+1-234 567\t8900"))
}

func TestMerge(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Merge([]string{"a", "b"}, []string{"b", "c", "a"}))
	assert.Equal(t, []string{}, Merge())
}

func TestDecodeText(t *testing.T) {
	assert.Equal(t, "1234567890", DecodeText([]byte{'1', '2', '3', 0xff, '4', '5', '6', '7', '8', '9', '0'}))
}

func TestExt(t *testing.T) {
	assert.Equal(t, "zip", Ext("Numbers.ZIP"))
	assert.Equal(t, "session", Ext("my.account.session"))
	assert.Equal(t, "", Ext("README"))
}

func buildZip(t *testing.T, files map[string][]byte, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(files[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestArchive(t *testing.T) {
	files := map[string][]byte{
		"a.txt":      []byte("+1234567890\n5550001111"),
		"dir/b.CSV":  []byte("5550001111,4440002222"),
		"c.json":     []byte(`{"phone":"9990001111"}`),
		"broken.txt": {0xff, 0xfe, '7', '7', '7', '0', '0', '0', '1', '1', '1', '1'},
		"notes/":     nil,
	}
	data := buildZip(t, files, "a.txt", "dir/b.CSV", "c.json", "broken.txt", "notes/")

	got := Archive(data, zap.NewNop())
	assert.Equal(t, []string{"1234567890", "5550001111", "4440002222", "7770001111"}, got)
}

func TestArchive_Corrupt(t *testing.T) {
	assert.Empty(t, Archive([]byte("definitely not a zip"), nil))
}

func TestFromFile(t *testing.T) {
	data := buildZip(t, map[string][]byte{"n.txt": []byte("5550001111")}, "n.txt")
	assert.Equal(t, []string{"5550001111"}, FromFile("batch.zip", data, nil))
	assert.Equal(t, []string{"4440002222"}, FromFile("batch.txt", []byte("4440002222"), nil))
}

func TestSessionFromArchive(t *testing.T) {
	data := buildZip(t, map[string][]byte{
		"readme.txt":       []byte("hi"),
		"acc/main.session": []byte("SESSION"),
		"other.json":       []byte("{}"),
	}, "readme.txt", "acc/main.session", "other.json")

	blob, name, err := SessionFromArchive(data)
	require.NoError(t, err)
	assert.Equal(t, "acc/main.session", name)
	assert.Equal(t, []byte("SESSION"), blob)

	empty := buildZip(t, map[string][]byte{"readme.txt": []byte("hi")}, "readme.txt")
	blob, _, err = SessionFromArchive(empty)
	require.NoError(t, err)
	assert.Nil(t, blob)

	_, _, err = SessionFromArchive([]byte("nope"))
	assert.Error(t, err)
}
