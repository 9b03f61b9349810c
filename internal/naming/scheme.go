package naming

// Scheme derives every identifier generated for one interface. Emitters and
// the validator both read names from a Scheme, so they cannot drift apart.
type Scheme struct {
	Interface string // interface name as declared
	Private   bool   // unexport top-level identifiers
}

func (s Scheme) top(name string) string {
	if s.Private {
		return Unexport(name)
	}
	return name
}

// Union is the tagged-union message type.
func (s Scheme) Union() string {
	return s.top(Pascal(s.Interface) + "Message")
}

// Marker is the unexported method sealing the union.
func (s Scheme) Marker() string {
	return "is" + Pascal(s.Interface) + "Message"
}

// Variant is the message variant struct for op.
func (s Scheme) Variant(op string) string {
	return s.top(Pascal(s.Interface) + "Message" + Pascal(op))
}

// Bundle is the parameter bundle struct for op.
func (s Scheme) Bundle(op string) string {
	return s.top(Pascal(op) + "ParamMessage")
}

// Client is the client stub type.
func (s Scheme) Client() string {
	return s.top(Pascal(s.Interface) + "Client")
}

// Constructor creates a client and its mailbox.
func (s Scheme) Constructor() string {
	return s.top("New" + Pascal(s.Interface) + "Client")
}

// Handler is the handler contract interface.
func (s Scheme) Handler() string {
	return s.top("Handle" + Pascal(s.Interface))
}

// Dispatch routes one message to a handler.
func (s Scheme) Dispatch() string {
	return s.top("Dispatch" + Pascal(s.Interface))
}

// Serve runs the dispatch loop over a receiver.
func (s Scheme) Serve() string {
	return s.top("Serve" + Pascal(s.Interface))
}

// Method is the client and handler method for op. Always exported.
func Method(op string) string {
	return Pascal(op)
}

// Field is the bundle field for a parameter. Always exported.
func Field(param string) string {
	return Pascal(param)
}

// TopLevel lists every package-level identifier generated for the given
// operations, in emission order. hasParams reports whether an operation gets
// a bundle.
func (s Scheme) TopLevel(ops []string, hasParams func(i int) bool) []string {
	var names []string
	for i, op := range ops {
		if hasParams(i) {
			names = append(names, s.Bundle(op))
		}
	}
	names = append(names, s.Union())
	for _, op := range ops {
		names = append(names, s.Variant(op))
	}
	return append(names,
		s.Client(), s.Constructor(),
		s.Handler(), s.Dispatch(), s.Serve())
}
