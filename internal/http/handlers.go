package http

import (
	"bytes"
	"log/slog"
	"net/http"
)

func (s *Server) handleGetInventory(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.inventory.Get(r.Context())).Write(w)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}

	view, err := s.inventory.AddItem(r.Context(), p.Get("name"), p.Get("real_name"), p.Get("category"))
	if err != nil {
		DomainError(err).Write(w)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(view).Write(w)
}

func (s *Server) handleEditItem(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}

	view, err := s.inventory.EditItem(r.Context(), r.PathValue("id"),
		p.Get("name"), p.Get("real_name"), p.Get("category"))
	if err != nil {
		DomainError(err).Write(w)
		return
	}
	NewResponse().JSON(view).Write(w)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	view, err := s.inventory.RemoveItem(r.Context(), r.PathValue("id"))
	if err != nil {
		DomainError(err).Write(w)
		return
	}
	NewResponse().JSON(view).Write(w)
}

func (s *Server) handleToggleToBuy(w http.ResponseWriter, r *http.Request) {
	view, err := s.inventory.ToggleToBuy(r.Context(), r.PathValue("id"))
	if err != nil {
		DomainError(err).Write(w)
		return
	}
	NewResponse().JSON(view).Write(w)
}

func (s *Server) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}
	q, err := p.GetInt("quantity")
	if err != nil {
		UnprocessableEntityError("quantity must be an integer").Write(w)
		return
	}

	view, err := s.inventory.SetQuantity(r.Context(), r.PathValue("id"), q)
	if err != nil {
		DomainError(err).Write(w)
		return
	}
	NewResponse().JSON(view).Write(w)
}

func (s *Server) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}
	total, err := p.GetInt64("total_cents")
	if err != nil {
		UnprocessableEntityError("total_cents must be an integer").Write(w)
		return
	}

	view, err := s.inventory.SetTotalPrice(r.Context(), r.PathValue("id"), total)
	if err != nil {
		DomainError(err).Write(w)
		return
	}
	NewResponse().JSON(view).Write(w)
}

func (s *Server) handleCompletePurchase(w http.ResponseWriter, r *http.Request) {
	view, err := s.inventory.CompletePurchase(r.Context())
	if err != nil {
		DomainError(err).Write(w)
		return
	}
	NewResponse().JSON(view).Write(w)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}

	view, err := s.inventory.AddCategory(r.Context(), p.Get("name"))
	if err != nil {
		DomainError(err).Write(w)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(view).Write(w)
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	view, err := s.inventory.RemoveCategory(r.Context(), r.PathValue("name"))
	if err != nil {
		DomainError(err).Write(w)
		return
	}
	NewResponse().JSON(view).Write(w)
}

func (s *Server) handleUpdatePoints(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}
	points, err := p.GetInt64("points")
	if err != nil {
		UnprocessableEntityError("points must be an integer").Write(w)
		return
	}

	view, err := s.inventory.UpdatePoints(r.Context(), points)
	if err != nil {
		DomainError(err).Write(w)
		return
	}
	NewResponse().JSON(view).Write(w)
}

// handleImportLegacy replaces the whole inventory with a spreadsheet export
// posted as CSV. Destructive, so it logs who did it.
func (s *Server) handleImportLegacy(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if len(p.GetRaw()) == 0 {
		BadRequestError("empty import body").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Legacy import requested",
		"client_ip", extractClientIP(r), "bytes", len(p.GetRaw()))

	view, err := s.inventory.ImportLegacy(r.Context(), bytes.NewReader(p.GetRaw()))
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	NewResponse().JSON(view).Write(w)
}
