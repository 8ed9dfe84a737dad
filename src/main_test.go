package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"littleduck/src/util"
)

// writeSource writes src to a temp .ld file and returns its path.
func writeSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ld")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func runSource(t *testing.T, src string) (string, error) {
	t.Helper()
	opt := util.Options{Src: writeSource(t, src)}
	var sb strings.Builder
	w := util.NewWriter(nil)
	err := run(opt, w)
	require.NoError(t, w.Flush())
	_ = sb
	return "", err
}

func TestRunHelloExit(t *testing.T) {
	src := `
program hello;
main {
	print("hello, littleduck");
	exit_code = 0;
}
end;
`
	_, err := runSource(t, src)
	assert.NoError(t, err)
}

func TestRunExitCodeNonZero(t *testing.T) {
	src := `
program failing;
main {
	exit_code = 7;
}
end;
`
	_, err := runSource(t, src)
	require.Error(t, err)
	ee, ok := err.(*exitError)
	require.True(t, ok, "expected *exitError, got %T: %v", err, err)
	assert.Equal(t, 7, ee.code)
}

func TestRunIfElse(t *testing.T) {
	src := `
program cond;
var x : int;
main {
	x = 10;
	if (x > 5) {
		exit_code = 1;
	} else {
		exit_code = 2;
	}
}
end;
`
	_, err := runSource(t, src)
	require.Error(t, err)
	ee := err.(*exitError)
	assert.Equal(t, 1, ee.code)
}

func TestRunWhileSum(t *testing.T) {
	src := `
program sumloop;
var i, total : int;
main {
	i = 0;
	total = 0;
	while (i < 5) {
		total = total + i;
		i = i + 1;
	}
	exit_code = total;
}
end;
`
	_, err := runSource(t, src)
	require.Error(t, err)
	ee := err.(*exitError)
	assert.Equal(t, 10, ee.code) // 0+1+2+3+4
}

func TestRunDoWhileRunsAtLeastOnce(t *testing.T) {
	src := `
program doonce;
var n : int;
main {
	n = 0;
	do {
		n = n + 1;
	} while (n < 0);
	exit_code = n;
}
end;
`
	_, err := runSource(t, src)
	require.Error(t, err)
	ee := err.(*exitError)
	assert.Equal(t, 1, ee.code)
}

func TestRunFunctionCallWithReturn(t *testing.T) {
	src := `
program withfunc;
int square(n:int): {
	return n * n;
}
main {
	exit_code = square(6);
}
end;
`
	_, err := runSource(t, src)
	require.Error(t, err)
	ee := err.(*exitError)
	assert.Equal(t, 36, ee.code)
}

func TestRunFunctionCallArgumentOrderIsPreserved(t *testing.T) {
	// sub is non-commutative, so a reversed argument->parameter binding
	// would yield 10 instead of -10.
	src := `
program withsub;
int sub(a:int, b:int): {
	return a - b;
}
main {
	exit_code = sub(10, 20);
}
end;
`
	_, err := runSource(t, src)
	require.Error(t, err)
	ee := err.(*exitError)
	assert.Equal(t, -10, ee.code)
}

func TestRunRejectsTypeMismatch(t *testing.T) {
	src := `
program badtypes;
var s : string;
main {
	s = 5;
}
end;
`
	_, err := runSource(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "semantic error")
	_, isExit := err.(*exitError)
	assert.False(t, isExit)
}

func TestRunRejectsUndeclaredIdentifier(t *testing.T) {
	src := `
program undeclared;
main {
	y = 5;
}
end;
`
	_, err := runSource(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "semantic error")
}
