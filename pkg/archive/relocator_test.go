package archive

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelocate(t *testing.T) {
	tests := []struct {
		mode       Mode
		keepSource bool
		name       string
	}{
		{mode: ModeMove, keepSource: false, name: "move removes source"},
		{mode: ModeCopy, keepSource: true, name: "copy keeps source"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/tmp/jgi/1203231/a.fastq", []byte("ACGT"), 0644))

			r := NewRelocator(fs, test.mode)
			assert.Equal(t, test.mode, r.Mode())
			n, err := r.Relocate("/tmp/jgi/1203231/a.fastq", "/archive/samples/S1/a.fastq")
			require.NoError(t, err)
			assert.EqualValues(t, 4, n)

			contents, err := afero.ReadFile(fs, "/archive/samples/S1/a.fastq")
			require.NoError(t, err)
			assert.Equal(t, "ACGT", string(contents))
			assert.Equal(t, test.keepSource, r.Exists("/tmp/jgi/1203231/a.fastq"))
		})
	}
}

func TestRelocateMissingSource(t *testing.T) {
	r := NewRelocator(afero.NewMemMapFs(), ModeMove)
	_, err := r.Relocate("/tmp/none", "/archive/none")
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeMove, m)

	m, err = ParseMode("copy")
	require.NoError(t, err)
	assert.Equal(t, ModeCopy, m)

	_, err = ParseMode("link")
	assert.Error(t, err)
}
