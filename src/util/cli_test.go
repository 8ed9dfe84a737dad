package util

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withArgs temporarily replaces os.Args for the duration of the test.
func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"ld"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestParseArgsPlainSource(t *testing.T) {
	withArgs(t, "program.ld")
	opt, err := ParseArgs()
	require.NoError(t, err)
	assert.Equal(t, "program.ld", opt.Src)
	assert.False(t, opt.Write)
}

func TestParseArgsDependenciesConsumesUntilNextFlag(t *testing.T) {
	withArgs(t, "main.ld", "--dependencies", "a.ld", "b.ld", "-v")
	opt, err := ParseArgs()
	require.NoError(t, err)
	assert.Equal(t, "main.ld", opt.Src)
	assert.Equal(t, []string{"a.ld", "b.ld"}, opt.Dependencies)
	assert.True(t, opt.Verbose)
}

func TestParseArgsOutputFlagImpliesWrite(t *testing.T) {
	withArgs(t, "main.ld", "-o", "out/")
	opt, err := ParseArgs()
	require.NoError(t, err)
	assert.Equal(t, "out/", opt.Out)
	assert.True(t, opt.Write)
}

func TestParseArgsMissingOutputArgument(t *testing.T) {
	withArgs(t, "main.ld", "-o")
	_, err := ParseArgs()
	require.Error(t, err)
}

func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	withArgs(t, "main.ld", "--bogus")
	_, err := ParseArgs()
	require.Error(t, err)
}

func TestParseArgsRejectsSecondPositionalArgument(t *testing.T) {
	withArgs(t, "main.ld", "extra.ld")
	_, err := ParseArgs()
	require.Error(t, err)
}

func TestParseArgsRequiresSource(t *testing.T) {
	withArgs(t, "-v")
	_, err := ParseArgs()
	require.Error(t, err)
}

func TestParseArgsTraceAndTokenStreamFlags(t *testing.T) {
	withArgs(t, "main.ld", "-d", "-ts", "-w")
	opt, err := ParseArgs()
	require.NoError(t, err)
	assert.True(t, opt.Trace)
	assert.True(t, opt.TokenStream)
	assert.True(t, opt.Write)
}
