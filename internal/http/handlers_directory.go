package http

import (
	"net/http"
	"strconv"

	applog "schoolsite/internal/log"
)

func (s *Server) handleListAlumni(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.directory.SearchAlumni(r.Context(), q.Get("q"), queryInt(q, "page", 1), queryInt(q, "size", 0))
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Body(page).Write(w)
}

func (s *Server) handleCreateAlumnus(w http.ResponseWriter, r *http.Request) {
	p, err := ParseRequestBody(w, r)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	a, err := bindAlumnus(p)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	a, err = s.directory.AddAlumnus(r.Context(), a)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/alumni/"+strconv.FormatInt(a.ID, 10)).
		Body(a).
		Write(w)
}

func (s *Server) handleDeleteAlumnus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.directory.RemoveAlumnus(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	view, err := s.directory.Gallery(r.Context(), r.URL.Query().Get("tag"))
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Body(view).Write(w)
}

func (s *Server) handleCreateGalleryImage(w http.ResponseWriter, r *http.Request) {
	p, err := ParseRequestBody(w, r)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	g, err := bindGalleryImage(p)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	g, err = s.directory.AddImage(r.Context(), g)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/gallery/"+strconv.FormatInt(g.ID, 10)).
		Body(g).
		Write(w)
}

func (s *Server) handleDeleteGalleryImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.directory.RemoveImage(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
