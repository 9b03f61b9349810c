package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const counterSource = `package counter

// Counter is a test protocol.
//
//chanproto:protocol
type Counter interface {
	Get() int32
	Inc(i int32)
	Reset()
	GetAndInc(i int32) int32
}
`

const gaugeCUE = `package metrics

interface: Gauge: {
	operation: {
		read: returns: "float64"
		set: args: v: "float64"
	}
}
`

const collidingSource = `package bad

//chanproto:protocol
type Bad interface {
	GetAndInc() int32
	Get_and_inc() int32
}
`

const malformedSource = `package bad

//chanproto:protocol
type Bad interface {
	Get(int32)
}
`

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runCLI executes the CLI and returns stdout, stderr and the exit code.
func runCLI(args ...string) (string, string, int) {
	var out, errOut bytes.Buffer
	code := Execute(args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func goldenCounter(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "codegen", "testdata", "golden", "counter.golden"))
	require.NoError(t, err)
	return string(data)
}
