package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"get", []string{"get"}},
		{"getAndInc", []string{"get", "And", "Inc"}},
		{"get_and_inc", []string{"get", "and", "inc"}},
		{"get-and-inc", []string{"get", "and", "inc"}},
		{"HTTPServer", []string{"HTTP", "Server"}},
		{"userID", []string{"user", "ID"}},
		{"v2Client", []string{"v2", "Client"}},
		{"__x__", []string{"x"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Words(tt.in))
		})
	}
}

func TestPascal(t *testing.T) {
	tests := map[string]string{
		"get":         "Get",
		"getAndInc":   "GetAndInc",
		"get_and_inc": "GetAndInc",
		"Counter":     "Counter",
		"counter":     "Counter",
		"userID":      "UserID",
		"HTTPServer":  "HTTPServer",
		"i":           "I",
		"x_1":         "X1",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Pascal(in))
		})
	}
}

func TestPascalCollisions(t *testing.T) {
	assert.Equal(t, Pascal("getValue"), Pascal("get_value"))
	assert.NotEqual(t, Pascal("get"), Pascal("gets"))
}

func TestUnexport(t *testing.T) {
	tests := map[string]string{
		"CounterMessage":   "counterMessage",
		"NewCounterClient": "newCounterClient",
		"HTTPClient":       "httpClient",
		"ID":               "id",
		"counter":          "counter",
		"A":                "a",
		"":                 "",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Unexport(in))
		})
	}
}

func TestIdentifierChecks(t *testing.T) {
	assert.True(t, IsIdentifier("getAndInc"))
	assert.True(t, IsIdentifier("_x"))
	assert.False(t, IsIdentifier("1x"))
	assert.False(t, IsIdentifier("type"))
	assert.False(t, IsIdentifier(""))
	assert.True(t, IsKeyword("func"))
	assert.False(t, IsKeyword("int"))
}

func TestUnique(t *testing.T) {
	taken := map[string]bool{"c": true, "c_": true}
	assert.Equal(t, "c__", Unique("c", func(s string) bool { return taken[s] }))
	assert.Equal(t, "reply", Unique("reply", func(s string) bool { return taken[s] }))
}
