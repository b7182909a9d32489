package api

import (
	"bytes"
	"runtime/pprof"
)

func (s *Server) registerDebugEndpoints() error {
	return s.RegisterEndpoint(Endpoint{
		Path:        "debug/stack",
		DataFunc:    getStack,
		Name:        "Get Goroutine Stack",
		Description: "Returns the current goroutine stack.",
	})
}

// getStack returns the current goroutine stack.
func getStack(_ *Request) (data []byte, err error) {
	buf := &bytes.Buffer{}
	err = pprof.Lookup("goroutine").WriteTo(buf, 1)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
