package httpapi

import (
	"net/http"
	"strings"

	"pricehunt-engine/internal/domain"
	"pricehunt-engine/internal/scrape"
)

type JobsHandler struct {
	Store Store
}

func (h JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.Store.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, job)
}

func (h JobsHandler) Logs(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.Store.GetJob(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	logs, err := h.Store.ListLogs(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if logs == nil {
		logs = []domain.LogEntry{}
	}
	writeJSON(w, logs)
}

func (h JobsHandler) Results(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.Store.GetJob(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	results, err := h.Store.ListResults(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	writeJSON(w, results)
}

type ProductsHandler struct {
	Store Store
	Jobs  JobStarter
}

// Search queues a job for the product and answers 202 with its id.
func (h ProductsHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req startSearchReq
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	if _, unknown := scrape.Sites(req.Marketplaces); len(unknown) > 0 {
		WriteError(w, r, http.StatusBadRequest, "unknown_marketplace",
			"unknown marketplaces: "+strings.Join(unknown, ", ")+"; known: "+strings.Join(scrape.Names(), ", "))
		return
	}
	opts := domain.SearchOptions{
		Instructions: strings.TrimSpace(req.Instructions),
		Marketplaces: req.Marketplaces,
		Category:     strings.TrimSpace(req.Category),
	}

	jobID, err := h.Jobs.StartJob(r.Context(), r.PathValue("id"), opts)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/jobs/"+jobID)
	WriteJSON(w, http.StatusAccepted, startSearchResp{JobID: jobID})
}

func (h ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, p)
}
