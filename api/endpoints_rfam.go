package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/safing/biodb/rfam"
	"github.com/safing/biodb/stockholm"
	"github.com/safing/biodb/table"
)

// RfamSource provides the stored Rfam records.
type RfamSource interface {
	Record(acc string, kind rfam.Kind) ([]byte, error)
	Accessions(kind rfam.Kind) ([]string, error)
	CachedFamiliesDetails(ctx context.Context) (*table.Table, error)
}

// RegisterRfamEndpoints registers the endpoints serving records of src.
func (s *Server) RegisterRfamEndpoints(src RfamSource) error {
	h := &rfamHandler{src: src}

	if err := s.RegisterEndpoint(Endpoint{
		Path:        "rfam/families",
		StructFunc:  h.families,
		Name:        "Rfam Families",
		Description: "Returns the details of all families of the configured release.",
	}); err != nil {
		return err
	}

	if err := s.RegisterEndpoint(Endpoint{
		Path:        "rfam/{type:seed|full|cm}",
		StructFunc:  h.accessions,
		Name:        "Stored Rfam Records",
		Description: "Returns the accessions of all stored records of a type.",
	}); err != nil {
		return err
	}

	if err := s.RegisterEndpoint(Endpoint{
		Path:        "rfam/{type:seed|full|cm}/{accession}",
		DataFunc:    h.record,
		Name:        "Rfam Record",
		Description: "Returns a stored record. Alignments are checked for completeness.",
	}); err != nil {
		return err
	}

	return s.RegisterEndpoint(Endpoint{
		Path:        "rfam/{type:seed|full}/{accession}/fasta",
		DataFunc:    h.fasta,
		Name:        "Rfam Alignment FASTA",
		Description: "Returns the aligned sequences of a stored alignment in FASTA format.",
	})
}

type rfamHandler struct {
	src RfamSource
}

func (h *rfamHandler) families(ar *Request) (i interface{}, err error) {
	families, err := h.src.CachedFamiliesDetails(ar.Ctx())
	if err != nil {
		return nil, err
	}
	return families.Records(), nil
}

func (h *rfamHandler) accessions(ar *Request) (i interface{}, err error) {
	kind, err := rfam.ParseKind(ar.URLVars["type"])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, err)
	}
	return h.src.Accessions(kind)
}

func (h *rfamHandler) record(ar *Request) (data []byte, err error) {
	kind, err := rfam.ParseKind(ar.URLVars["type"])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, err)
	}
	data, err = h.src.Record(ar.URLVars["accession"], kind)
	return data, rfamError(err)
}

func (h *rfamHandler) fasta(ar *Request) (data []byte, err error) {
	kind, err := rfam.ParseKind(ar.URLVars["type"])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, err)
	}
	acc := ar.URLVars["accession"]
	content, err := h.src.Record(acc, kind)
	if err != nil {
		return nil, rfamError(err)
	}
	alignment, err := stockholm.ParseRecord(acc, "", content)
	if err != nil {
		return nil, err
	}
	return alignment.Fasta(true), nil
}

func rfamError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rfam.ErrRecordNotFound), errors.Is(err, rfam.ErrFamilyNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, err)
	case errors.Is(err, rfam.ErrInvalidAccession):
		return fmt.Errorf("%w: %s", ErrBadRequest, err)
	default:
		return err
	}
}
