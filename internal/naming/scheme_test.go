package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemePublic(t *testing.T) {
	s := Scheme{Interface: "Counter"}

	assert.Equal(t, "CounterMessage", s.Union())
	assert.Equal(t, "isCounterMessage", s.Marker())
	assert.Equal(t, "CounterMessageGetAndInc", s.Variant("getAndInc"))
	assert.Equal(t, "GetAndIncParamMessage", s.Bundle("getAndInc"))
	assert.Equal(t, "CounterClient", s.Client())
	assert.Equal(t, "NewCounterClient", s.Constructor())
	assert.Equal(t, "HandleCounter", s.Handler())
	assert.Equal(t, "DispatchCounter", s.Dispatch())
	assert.Equal(t, "ServeCounter", s.Serve())
	assert.Equal(t, "GetAndInc", Method("get_and_inc"))
	assert.Equal(t, "UserID", Field("userID"))
}

func TestSchemePrivate(t *testing.T) {
	s := Scheme{Interface: "counter", Private: true}

	assert.Equal(t, "counterMessage", s.Union())
	assert.Equal(t, "isCounterMessage", s.Marker())
	assert.Equal(t, "counterMessageInc", s.Variant("inc"))
	assert.Equal(t, "incParamMessage", s.Bundle("inc"))
	assert.Equal(t, "counterClient", s.Client())
	assert.Equal(t, "newCounterClient", s.Constructor())
	assert.Equal(t, "handleCounter", s.Handler())
	assert.Equal(t, "dispatchCounter", s.Dispatch())
	assert.Equal(t, "serveCounter", s.Serve())
	assert.Equal(t, "Inc", Method("inc"))
}

func TestSchemeTopLevel(t *testing.T) {
	s := Scheme{Interface: "Counter"}
	ops := []string{"get", "inc"}
	names := s.TopLevel(ops, func(i int) bool { return ops[i] == "inc" })

	assert.Equal(t, []string{
		"IncParamMessage",
		"CounterMessage",
		"CounterMessageGet",
		"CounterMessageInc",
		"CounterClient",
		"NewCounterClient",
		"HandleCounter",
		"DispatchCounter",
		"ServeCounter",
	}, names)
}
