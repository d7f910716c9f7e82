package grammar

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidRules(t *testing.T) {
	g, err := ParseFile("testdata/mk.gmr")
	require.NoError(t, err)

	require.Len(t, g.Rules, 4)
	assert.Equal(t, Rule{Sequence: []string{"[BP]"}, Label: "Claw Slam", Line: 2}, g.Rules[0])
	assert.Equal(t, []string{"[BP]", "[FP]"}, g.Rules[1].Sequence)
	assert.Equal(t, "Saibot Blast", g.Rules[1].Label)
	assert.Equal(t, []string{"Down", "Right", "[FP]"}, g.Rules[2].Sequence)

	assert.Equal(t, []string{"[BP]", "[FP]", "Down", "Right", "Back", "[LK]"}, g.Alphabet)
}

func TestParse_EmptySource(t *testing.T) {
	g, err := ParseString("")
	require.NoError(t, err)
	assert.Empty(t, g.Rules)
	assert.Empty(t, g.Alphabet)

	g, err = ParseString("# only a comment\n\n   \n")
	require.NoError(t, err)
	assert.Empty(t, g.Rules)
}

func TestParse_SplitsAtFirstArrow(t *testing.T) {
	g, err := ParseString("a, b -> Dash -> Cancel\n")
	require.NoError(t, err)
	require.Len(t, g.Rules, 1)
	assert.Equal(t, []string{"a", "b"}, g.Rules[0].Sequence)
	assert.Equal(t, "Dash -> Cancel", g.Rules[0].Label)
}

func TestParse_SkipsEmptyTokens(t *testing.T) {
	g, err := ParseString("a,,b, ,c -> ABC")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, g.Rules[0].Sequence)
}

func TestParse_PreservesCaseAndNormalizes(t *testing.T) {
	// A decomposed e + combining acute must intern like the precomposed form.
	g, err := ParseString("Cafe\u0301, caf\u00e9 -> Order")
	require.NoError(t, err)
	assert.Equal(t, []string{"Caf\u00e9", "caf\u00e9"}, g.Rules[0].Sequence)
}

func TestParse_CRLF(t *testing.T) {
	g, err := ParseString("a -> A\r\nb, c -> BC\r\n")
	require.NoError(t, err)
	require.Len(t, g.Rules, 2)
	assert.Equal(t, "BC", g.Rules[1].Label)
	assert.Equal(t, 2, g.Rules[1].Line)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		kind     Kind
		sentinel error
		line     int
	}{
		{"missing arrow", "testdata/missing_arrow.gmr", KindMissingSeparator, ErrMissingSeparator, 4},
		{"missing comma", "testdata/missing_comma.gmr", KindMissingSeparator, ErrMissingSeparator, 1},
		{"empty sequence", "testdata/empty_sequence.gmr", KindEmptySequence, ErrEmptySequence, 2},
		{"empty label", "testdata/empty_label.gmr", KindEmptyLabel, ErrEmptyLabel, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseFile(tt.file)
			require.Error(t, err)
			assert.Nil(t, g)

			pe, ok := AsParseError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.line, pe.Line)
			assert.Equal(t, tt.file, pe.Path)
			assert.True(t, errors.Is(err, tt.sentinel))
			assert.Contains(t, err.Error(), tt.file)
		})
	}
}

func TestParse_EmptyLabelReportedBeforeEmptySequence(t *testing.T) {
	_, err := ParseString(" -> ")
	assert.ErrorIs(t, err, ErrEmptyLabel)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile("testdata/does-not-exist.gmr")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)

	pe, ok := AsParseError(err)
	require.True(t, ok)
	assert.Equal(t, "testdata/does-not-exist.gmr", pe.Path)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestParse_ReaderError(t *testing.T) {
	_, err := Parse(failingReader{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestParseError_Format(t *testing.T) {
	assert.Equal(t, "line 3: boom", (&ParseError{Line: 3, Message: "boom"}).Error())
	assert.Equal(t, "f.gmr:3: boom", (&ParseError{Path: "f.gmr", Line: 3, Message: "boom"}).Error())
	assert.Equal(t, "f.gmr: boom", (&ParseError{Path: "f.gmr", Message: "boom"}).Error())
	assert.Equal(t, "boom", (&ParseError{Message: "boom"}).Error())
}

func TestGrammar_Patterns(t *testing.T) {
	g, err := ParseString("a -> A\nb, a -> BA")
	require.NoError(t, err)

	p := g.Patterns()
	require.Len(t, p, 2)
	assert.Equal(t, []string{"b", "a"}, p[1].Tokens)
	assert.Equal(t, "BA", p[1].Label)
}

func TestLoad_DispatchesOnExtension(t *testing.T) {
	text, err := Load("testdata/mk.gmr")
	require.NoError(t, err)
	cue, err := Load("testdata/mk.cue")
	require.NoError(t, err)

	assert.Equal(t, text.Rules[0].Sequence, cue.Rules[0].Sequence)
	assert.Equal(t, text.Rules[2].Label, cue.Rules[2].Label)
}

func TestParseCUE(t *testing.T) {
	g, err := LoadCUEFile("testdata/mk.cue")
	require.NoError(t, err)

	require.Len(t, g.Rules, 3)
	assert.Equal(t, "Fireball", g.Rules[2].Label)
	assert.Equal(t, []string{"[BP]", "[FP]", "Down", "Right"}, g.Alphabet)
	assert.Equal(t, []Binding{
		{Key: "ctrl-d", Symbol: "Down"},
		{Key: "j", Symbol: "[BP]"},
		{Key: "k", Symbol: "[FP]"},
	}, g.Bindings)
}

func TestParseCUE_Errors(t *testing.T) {
	_, err := LoadCUEFile("testdata/bad.cue")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = ParseCUE([]byte(`other: 1`), "x.cue")
	assert.ErrorIs(t, err, ErrInvalidSource)
	assert.Contains(t, err.Error(), "combos list is required")

	_, err = ParseCUE([]byte(`combos: [{keys: [], move: "M"}]`), "x.cue")
	assert.ErrorIs(t, err, ErrEmptySequence)

	_, err = ParseCUE([]byte(`combos: [{keys: ["a"], move: "  "}]`), "x.cue")
	assert.ErrorIs(t, err, ErrEmptyLabel)

	_, err = ParseCUE([]byte(`combos: [`), "x.cue")
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "[BP]", Canonical("  [BP]\t"))
	assert.Equal(t, "\u00e9", Canonical("e\u0301"))
	assert.Equal(t, "", Canonical("   "))
}

func TestParse_LongLine(t *testing.T) {
	seq := strings.Repeat("a,", 5000) + "b"
	g, err := ParseString(seq + " -> Long")
	require.NoError(t, err)
	assert.Len(t, g.Rules[0].Sequence, 5001)
	assert.Equal(t, []string{"a", "b"}, g.Alphabet)
}
