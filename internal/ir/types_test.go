package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFieldNaming(t *testing.T) {
	spec := counterSpec()
	spec.Imports = []Import{{Name: "time", Path: "time"}}

	data, err := json.Marshal(spec)
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"visibility":"public"`)
	assert.Contains(t, s, `"operations":[`)
	assert.Contains(t, s, `"imports":[{"name":"time","path":"time"}]`)
	assert.NotContains(t, s, "Pos")
	assert.NotContains(t, s, "Filename")
}

func TestInterfaceSpecRoundTrip(t *testing.T) {
	spec := counterSpec()
	data, err := json.Marshal(spec)
	require.NoError(t, err)

	var got InterfaceSpec
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, spec.Name, got.Name)
	require.Len(t, got.Operations, 3)
	assert.Equal(t, "i", got.Operations[1].Params[0].Name)
	assert.Equal(t, ParamsNoReturn, got.Operations[1].Kind())
}

func TestImportPath(t *testing.T) {
	spec := &InterfaceSpec{Imports: []Import{
		{Name: "time", Path: "time"},
		{Name: "pb", Path: "example.com/api/v1"},
	}}

	path, ok := spec.ImportPath("pb")
	assert.True(t, ok)
	assert.Equal(t, "example.com/api/v1", path)

	_, ok = spec.ImportPath("fmt")
	assert.False(t, ok)
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "counter.go:3:2", Position{Filename: "counter.go", Line: 3, Column: 2}.String())
	assert.Equal(t, "3:2", Position{Line: 3, Column: 2}.String())
	assert.Equal(t, "counter.go", Position{Filename: "counter.go"}.String())
	assert.False(t, Position{}.IsValid())
}
