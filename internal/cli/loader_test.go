package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chanproto/internal/compiler"
	"github.com/roach88/chanproto/internal/ir"
)

func TestLoadSourceKinds(t *testing.T) {
	dir := t.TempDir()
	goFile := writeFile(t, dir, "counter.go", counterSource)

	res, err := LoadSource(goFile, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceGo, res.Kind)
	assert.False(t, res.IsDir)
	require.Len(t, res.Interfaces, 1)
	assert.Equal(t, "Counter", res.Interfaces[0].Name)

	res, err = LoadSource(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceGo, res.Kind)
	assert.True(t, res.IsDir)

	cueDir := t.TempDir()
	writeFile(t, cueDir, "gauge.cue", gaugeCUE)
	res, err = LoadSource(cueDir, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceCUE, res.Kind)
	assert.Equal(t, "metrics", res.Interfaces[0].Package)
}

func TestLoadSourceSelectsCUENames(t *testing.T) {
	src := writeFile(t, t.TempDir(), "api.cue", gaugeCUE+`
interface: Meter: operation: mark: {}
`)

	res, err := LoadSource(src, []string{"Meter"})
	require.NoError(t, err)
	require.Len(t, res.Interfaces, 1)
	assert.Equal(t, "Meter", res.Interfaces[0].Name)

	_, err = LoadSource(src, []string{"Missing"})
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
	assert.Contains(t, loadErr.Message, "interface Missing not found")
}

func TestLoadSourceErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSource(filepath.Join(dir, "nope.go"), nil)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)

	txt := writeFile(t, dir, "notes.txt", "hello")
	_, err = LoadSource(txt, nil)
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)

	syntax := writeFile(t, dir, "broken.go", "package broken\n\ntype X interface {\n")
	_, err = LoadSource(syntax, nil)
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeLoadFailed, loadErr.Code)

	malformed := writeFile(t, dir, "bad.go", malformedSource)
	_, err = LoadSource(malformed, nil)
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 5, loadErr.Pos.Line)
	assert.Contains(t, loadErr.Message, "parameters must be named")
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := map[string]string{
		"package":               compiler.ErrPackageName,
		"visibility":            compiler.ErrInvalidVisibility,
		"operation":             compiler.ErrNoOperations,
		"interface":             ErrCodeNoFiles,
		"type":                  ErrCodeNoFiles,
		"imports.time":          compiler.ErrInvalidImport,
		"operation.inc.args.i":  compiler.ErrInvalidType,
		"operation.get.returns": compiler.ErrInvalidType,
		"Counter":               ErrCodeLoadFailed,
	}
	for field, want := range tests {
		assert.Equal(t, want, MapFieldToErrorCode(field), field)
	}
}

func TestLoadErrorDetail(t *testing.T) {
	plain := &LoadError{Code: ErrCodeNotFound, Message: "source not found: x.go"}
	assert.Equal(t, "E005: source not found: x.go", plain.Error())
	assert.Equal(t, "source not found: x.go", plain.Detail())

	positioned := &LoadError{
		Code:    ErrCodeLoadFailed,
		Message: "unexpected token",
		Pos:     ir.Position{Filename: "bad.go", Line: 5, Column: 2},
	}
	assert.Equal(t, "bad.go:5:2: unexpected token", positioned.Detail())
}
