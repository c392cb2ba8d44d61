package http

import (
	"net/http"
	"strconv"

	"schoolsite/internal/core"
	applog "schoolsite/internal/log"
)

// summaryResponse is the fee table footer. Amounts are sent formatted and
// as raw unit counts.
type summaryResponse struct {
	TotalClasses   int         `json:"totalClasses"`
	TotalAnnualSum core.Amount `json:"totalAnnualSum"`
	AverageAnnual  core.Amount `json:"averageAnnual"`
	Raw            struct {
		TotalAnnualSum int64 `json:"totalAnnualSum"`
		AverageAnnual  int64 `json:"averageAnnual"`
	} `json:"raw"`
}

func newSummaryResponse(sum core.FeeSummary) summaryResponse {
	resp := summaryResponse{
		TotalClasses:   sum.TotalClasses,
		TotalAnnualSum: sum.TotalAnnualSum,
		AverageAnnual:  sum.AverageAnnual,
	}
	resp.Raw.TotalAnnualSum = sum.TotalAnnualSum.Int64()
	resp.Raw.AverageAnnual = sum.AverageAnnual.Int64()
	return resp
}

type categoryResponse struct {
	Name string `json:"name"`
	core.BadgeStyle
}

func (s *Server) handleListFees(w http.ResponseWriter, r *http.Request) {
	records, err := s.loadFees(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Body(records).Write(w)
}

func (s *Server) handleFeeSummary(w http.ResponseWriter, r *http.Request) {
	records, err := s.loadFees(r.Context())
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}
	NewJSONResponse().Body(newSummaryResponse(s.fees.Summarize(records))).Write(w)
}

func (s *Server) handleGetFee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	rec, err := s.fees.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Body(rec).Write(w)
}

func (s *Server) handleCreateFee(w http.ResponseWriter, r *http.Request) {
	p, err := ParseRequestBody(w, r)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	in, err := bindFee(p)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	rec, err := s.fees.Create(r.Context(), in.record(0))
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	s.invalidateFees()
	s.metrics.feesCreated.Add(1)

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/fees/"+strconv.FormatInt(rec.ID, 10)).
		Body(rec).
		Write(w)
}

func (s *Server) handleUpdateFee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	p, err := ParseRequestBody(w, r)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	in, err := bindFee(p)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	rec, err := s.fees.Update(r.Context(), in.record(id))
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	s.invalidateFees()
	s.metrics.feesUpdated.Add(1)
	NewJSONResponse().Body(rec).Write(w)
}

func (s *Server) handleDeleteFee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.fees.Delete(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	s.invalidateFees()
	s.metrics.feesDeleted.Add(1)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	out := make([]categoryResponse, 0, len(core.Categories))
	for _, c := range core.Categories {
		out = append(out, categoryResponse{Name: string(c), BadgeStyle: c.Badge()})
	}
	NewJSONResponse().Body(out).Write(w)
}
