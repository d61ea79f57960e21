package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/catalog/internal/catalog"
	"github.com/JonMunkholm/catalog/internal/core"
)

// maxJSONBody caps catalog request bodies.
const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w: %v", catalog.ErrInvalid, err)
	}
	return nil
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.service.ListProducts(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.service.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in core.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	p, err := s.service.CreateProduct(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in core.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	p, err := s.service.UpdateProduct(r.Context(), chi.URLParam(r, "productID"), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteProduct(r.Context(), chi.URLParam(r, "productID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateVariant(w http.ResponseWriter, r *http.Request) {
	var in core.VariantInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	v, err := s.service.CreateVariant(r.Context(), chi.URLParam(r, "productID"), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleUpdateVariant(w http.ResponseWriter, r *http.Request) {
	var in core.VariantInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	v, err := s.service.UpdateVariant(r.Context(), chi.URLParam(r, "productID"), chi.URLParam(r, "variantID"), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteVariant(w http.ResponseWriter, r *http.Request) {
	err := s.service.DeleteVariant(r.Context(), chi.URLParam(r, "productID"), chi.URLParam(r, "variantID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFacilities(w http.ResponseWriter, r *http.Request) {
	facilities, err := s.service.ListFacilities(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, facilities)
}

func (s *Server) handleCreateFacility(w http.ResponseWriter, r *http.Request) {
	var in core.FacilityInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	f, err := s.service.CreateFacility(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}
