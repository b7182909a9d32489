package api

func (s *Server) registerMetaEndpoints() error {
	if err := s.RegisterEndpoint(Endpoint{
		Path:        "endpoints",
		StructFunc:  s.listEndpoints,
		Name:        "List Endpoints",
		Description: "Returns all registered API endpoints.",
	}); err != nil {
		return err
	}

	if err := s.RegisterEndpoint(Endpoint{
		Path:        "ping",
		DataFunc:    ping,
		Name:        "Ping",
		Description: "Pong.",
	}); err != nil {
		return err
	}

	return nil
}

// EndpointInfo documents an endpoint.
type EndpointInfo struct {
	Path        string `json:"path" yaml:"path" msgpack:"path"`
	MimeType    string `json:"mimeType" yaml:"mimeType" msgpack:"mimeType"`
	Name        string `json:"name" yaml:"name" msgpack:"name"`
	Description string `json:"description" yaml:"description" msgpack:"description"`
}

func (s *Server) listEndpoints(_ *Request) (i interface{}, err error) {
	eps := s.Endpoints()
	infos := make([]EndpointInfo, 0, len(eps))
	for _, ep := range eps {
		infos = append(infos, EndpointInfo{
			Path:        apiV1Path + ep.Path,
			MimeType:    ep.MimeType,
			Name:        ep.Name,
			Description: ep.Description,
		})
	}
	return infos, nil
}

func ping(_ *Request) (data []byte, err error) {
	return []byte("Pong.\n"), nil
}
