package signature

import (
	"os"
	"path/filepath"
	"testing"

	"gamemode/internal/input"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSignatures() []Signature {
	return []Signature{
		Exact("signature_20B_30000_70000000", mouseDown(input.WM_XBUTTONDOWN, 0x00030000, 0x70000000)),
		{Name: "masked", Kind: input.KindRawMouse, Message: input.WM_INPUT, Payload: 0x40, PayloadMask: 0xFFFF},
	}
}

func TestSaveLoadAllFormats(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"learned.json", "learned.yaml", "learned.yml", "learned.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "nested", name)
			require.NoError(t, Save(path, sampleSignatures()))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, sampleSignatures(), got)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnknownFormat(t *testing.T) {
	_, err := Load("signatures.ini")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Marshal(nil, Format("xml"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
}

func TestUnmarshalRejectsBadKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"signatures":[{"name":"x","kind":"laser"}]}`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	n, err := c.Merge(sampleSignatures())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = c.Merge(sampleSignatures())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	got, ok := c.Classify(mouseDown(input.WM_XBUTTONDOWN, 0x00030000, 0x70000000))
	require.True(t, ok)
	assert.Equal(t, "signature_20B_30000_70000000", got)
}
