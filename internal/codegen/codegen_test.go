package codegen

import (
	"errors"
	"go/parser"
	"go/token"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chanproto/internal/compiler"
	"github.com/roach88/chanproto/internal/emit"
	"github.com/roach88/chanproto/internal/ir"
)

func counterSpec() ir.InterfaceSpec {
	return ir.InterfaceSpec{
		Visibility: ir.Public,
		Name:       "Counter",
		Package:    "counter",
		Source:     "counter.go",
		Operations: []ir.OperationSpec{
			{Name: "Get", Returns: "int32"},
			{Name: "Inc", Params: []ir.Param{{Name: "i", Type: "int32"}}},
			{Name: "Reset"},
			{Name: "GetAndInc", Params: []ir.Param{{Name: "i", Type: "int32"}}, Returns: "int32"},
		},
	}
}

// To regenerate golden files, run:
//
//	go test ./internal/codegen -update
func TestGenerateGolden(t *testing.T) {
	res, err := Generate([]ir.InterfaceSpec{counterSpec()}, emit.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "counter", res.Package)
	assert.Equal(t, []string{"Counter"}, res.Interfaces)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "counter", res.Source)
}

func TestGenerateParses(t *testing.T) {
	opts := emit.DefaultOptions()
	opts.Failure = emit.FailError
	opts.ReplyDrop = emit.ReplyIgnore

	res, err := Generate([]ir.InterfaceSpec{counterSpec()}, opts)
	require.NoError(t, err)

	_, err = parser.ParseFile(token.NewFileSet(), "counter_chanproto.go", res.Source, parser.ParseComments)
	assert.NoError(t, err)
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate([]ir.InterfaceSpec{counterSpec()}, emit.DefaultOptions())
	require.NoError(t, err)
	b, err := Generate([]ir.InterfaceSpec{counterSpec()}, emit.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, a.Source, b.Source)
}

func TestGenerateHeader(t *testing.T) {
	spec := counterSpec()
	spec.Source = ""
	res, err := Generate([]ir.InterfaceSpec{spec}, emit.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, string(res.Source), "// Code generated by chanproto. DO NOT EDIT.\n")

	meter := gaugeSpec()
	meter.Name = "Meter"
	meter.Source = "counter.go"
	meter.Operations = []ir.OperationSpec{{Name: "Mark"}}
	res, err = Generate([]ir.InterfaceSpec{counterSpec(), gaugeSpec(), meter}, emit.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, string(res.Source), "// Code generated by chanproto from counter.go, gauge.go. DO NOT EDIT.\n")
	assert.Equal(t, []string{"Counter", "Gauge", "Meter"}, res.Interfaces)
}

func gaugeSpec() ir.InterfaceSpec {
	return ir.InterfaceSpec{
		Visibility: ir.Public,
		Name:       "Gauge",
		Package:    "counter",
		Source:     "gauge.go",
		Operations: []ir.OperationSpec{
			{Name: "Read", Returns: "float64"},
			{Name: "Set", Params: []ir.Param{{Name: "v", Type: "float64"}}},
		},
	}
}

func TestGenerateImports(t *testing.T) {
	spec := counterSpec()
	spec.Imports = []ir.Import{
		{Name: "time", Path: "time"},
		{Name: "yml", Path: "gopkg.in/yaml.v3"},
		{Name: "unused", Path: "example.com/unused"},
	}
	spec.Operations = append(spec.Operations,
		ir.OperationSpec{Name: "Sleep", Params: []ir.Param{{Name: "d", Type: "time.Duration"}}},
		ir.OperationSpec{Name: "Node", Returns: "*yml.Node"},
	)

	res, err := Generate([]ir.InterfaceSpec{spec}, emit.DefaultOptions())
	require.NoError(t, err)
	src := string(res.Source)

	assert.Contains(t, src, "import (\n\t\"github.com/roach88/chanproto/chanrt\"\n\tyml \"gopkg.in/yaml.v3\"\n\t\"time\"\n)\n")
	assert.NotContains(t, src, "example.com/unused")
	assert.Contains(t, src, "Reply chanrt.ReplySender[*yml.Node]")
}

func TestGenerateDiagnostics(t *testing.T) {
	spec := counterSpec()
	spec.Operations = append(spec.Operations,
		ir.OperationSpec{Name: "get_and_inc"},
		ir.OperationSpec{Name: "Put", Params: []ir.Param{{Name: "type", Type: "int"}}},
	)

	_, err := Generate([]ir.InterfaceSpec{spec}, emit.DefaultOptions())
	require.Error(t, err)

	var diag *DiagnosticsError
	require.True(t, errors.As(err, &diag))
	var codes []string
	for _, e := range diag.Errors {
		codes = append(codes, e.Code)
	}
	assert.Contains(t, codes, compiler.ErrVariantCollision)
	assert.Contains(t, codes, compiler.ErrParamName)
	assert.Contains(t, err.Error(), "validation errors")
}

func TestGenerateCrossInterfaceCollision(t *testing.T) {
	_, err := Generate([]ir.InterfaceSpec{counterSpec(), counterSpec()}, emit.DefaultOptions())

	var diag *DiagnosticsError
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, compiler.ErrNameCollision, diag.Errors[0].Code)
}

func TestGenerateConflictingImports(t *testing.T) {
	a := counterSpec()
	a.Imports = []ir.Import{{Name: "store", Path: "example.com/a/store"}}
	b := gaugeSpec()
	b.Imports = []ir.Import{{Name: "store", Path: "example.com/b/store"}}

	_, err := Generate([]ir.InterfaceSpec{a, b}, emit.DefaultOptions())

	var diag *DiagnosticsError
	require.ErrorAs(t, err, &diag)
	require.Len(t, diag.Errors, 1)
	assert.Equal(t, compiler.ErrInvalidImport, diag.Errors[0].Code)
	assert.Equal(t, "Gauge.imports.store", diag.Errors[0].Field)
}

func TestGenerateStateType(t *testing.T) {
	spec := counterSpec()
	spec.Imports = []ir.Import{{Name: "sync", Path: "sync"}}

	opts := emit.DefaultOptions()
	opts.StateType = "*sync.Mutex"
	res, err := Generate([]ir.InterfaceSpec{spec}, opts)
	require.NoError(t, err)
	assert.Contains(t, string(res.Source), "func DispatchCounter(h HandleCounter, state *sync.Mutex, msg CounterMessage) {")

	opts.StateType = "*store.DB"
	_, err = Generate([]ir.InterfaceSpec{spec}, opts)
	var diag *DiagnosticsError
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, "state-type", diag.Errors[0].Field)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, err := Generate(nil, emit.DefaultOptions())
	assert.Error(t, err)

	opts := emit.DefaultOptions()
	opts.Failure = "retry"
	_, err = Generate([]ir.InterfaceSpec{counterSpec()}, opts)
	assert.ErrorContains(t, err, "invalid failure mode")
}
