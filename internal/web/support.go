package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cinewatch/internal/booking"
	"cinewatch/internal/storage"
	"cinewatch/internal/support"
)

type SupportData struct {
	Query string
	Alert string
	FAQs  []support.FAQ
}

// Support serves the FAQ page with its search box.
func (h *Handler) Support(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	result := h.data.SearchFAQ(query)
	h.page(w, r, http.StatusOK, "support", "Help Center", SupportData{
		Query: query,
		Alert: result.Alert,
		FAQs:  result.FAQs,
	})
}

type ChatData struct {
	Messages  []support.Message
	LiveAgent bool
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	sess := h.visitor(w, r)
	if sess == nil {
		return
	}
	conv := sess.Chat()
	h.page(w, r, http.StatusOK, "chat", "Support Chat", ChatData{
		Messages:  conv.Messages(),
		LiveAgent: conv.LiveAgent(),
	})
}

// ChatSend answers one message and redirects back to the transcript.
func (h *Handler) ChatSend(w http.ResponseWriter, r *http.Request) {
	sess := h.visitor(w, r)
	if sess == nil {
		return
	}
	reply := h.bot.Respond(sess.Chat(), r.FormValue("message"))
	h.logger.Debug().Str("rule", string(reply.Rule)).Bool("live_agent", reply.LiveAgent).Msg("chat reply")
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

type AdvertiseData struct {
	Packages []support.AdPackage
}

func (h *Handler) Advertise(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusOK, "advertise", "Advertise", AdvertiseData{Packages: h.data.Packages})
}

type AdFormData struct {
	Form     *booking.AdForm
	Packages []support.AdPackage
	Error    string
	Request  *storage.AdRequest
}

// AdvertiseForm serves the three-step enquiry form. GET with ?package=
// starts a fresh form for that package.
func (h *Handler) AdvertiseForm(w http.ResponseWriter, r *http.Request) {
	sess := h.visitor(w, r)
	if sess == nil {
		return
	}

	form := sess.AdForm()
	if r.Method == http.MethodGet {
		if pkg := r.URL.Query().Get("package"); form == nil || form.Submitted || pkg != "" {
			form = booking.NewAdForm(h.data.Packages, pkg)
			sess.SetAdForm(form)
		}
		h.page(w, r, http.StatusOK, "advertise_form", "Advertising Enquiry", AdFormData{Form: form, Packages: h.data.Packages})
		return
	}

	if form == nil {
		form = booking.NewAdForm(h.data.Packages, "")
		sess.SetAdForm(form)
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid form.")
		return
	}

	data := AdFormData{Form: form, Packages: h.data.Packages}
	status := http.StatusOK

	var err error
	switch r.PostForm.Get("action") {
	case "back":
		form.Back()
	case "submit":
		form.Fill(r.PostForm.Get, r.PostForm.Has)
		data.Request, err = form.Submit(r.Context(), h.store)
	default:
		form.Fill(r.PostForm.Get, r.PostForm.Has)
		err = form.Next()
	}

	var stepErr *booking.StepError
	switch {
	case errors.As(err, &stepErr):
		data.Error = stepErr.Message
		status = http.StatusUnprocessableEntity
	case err != nil:
		h.logger.Error().Err(err).Msg("failed to save ad request")
		data.Error = "We could not send your request. Please try again."
		status = http.StatusInternalServerError
	case data.Request != nil:
		h.logger.Info().Str("request", data.Request.ID).Str("package", data.Request.Package).Msg("ad request received")
		sess.SetAdForm(nil)
	}

	h.page(w, r, status, "advertise_form", "Advertising Enquiry", data)
}

type DeveloperData struct {
	Projects []support.Project
}

func (h *Handler) Developer(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusOK, "developer", "Developer", DeveloperData{Projects: h.data.Projects})
}

type ProjectData struct {
	Project support.Project
}

// Project serves /developer/{id}.
func (h *Handler) Project(w http.ResponseWriter, r *http.Request) {
	p, ok := h.data.Project(chi.URLParam(r, "id"))
	if !ok {
		h.fail(w, r, http.StatusNotFound, "Project not found.")
		return
	}
	h.page(w, r, http.StatusOK, "project", p.Name+" - Project Details", ProjectData{Project: p})
}

type InfringementData struct {
	Form   *booking.InfringementForm
	Error  string
	Report *storage.InfringementReport
}

// Infringement serves the three-step infringement report. GET resumes the
// visitor's unsent report or starts a new one.
func (h *Handler) Infringement(w http.ResponseWriter, r *http.Request) {
	sess := h.visitor(w, r)
	if sess == nil {
		return
	}

	form := sess.InfringementForm()
	if form == nil || form.Submitted {
		form = booking.NewInfringementForm()
		sess.SetInfringementForm(form)
	}
	if r.Method == http.MethodGet {
		h.page(w, r, http.StatusOK, "infringement", "Report Infringement", InfringementData{Form: form})
		return
	}

	if err := r.ParseForm(); err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid form.")
		return
	}

	data := InfringementData{Form: form}
	status := http.StatusOK

	var err error
	switch r.PostForm.Get("action") {
	case "back":
		form.Back()
	case "submit":
		form.Fill(r.PostForm.Get, r.PostForm.Has)
		data.Report, err = form.Submit(r.Context(), h.store)
	default:
		form.Fill(r.PostForm.Get, r.PostForm.Has)
		err = form.Next()
	}

	var stepErr *booking.StepError
	switch {
	case errors.As(err, &stepErr):
		data.Error = stepErr.Message
		status = http.StatusUnprocessableEntity
	case err != nil:
		h.logger.Error().Err(err).Msg("failed to save infringement report")
		data.Error = "We could not send your report. Please try again."
		status = http.StatusInternalServerError
	case data.Report != nil:
		h.logger.Info().Str("report", data.Report.ID).Str("url", data.Report.InfringingURL).Msg("infringement report received")
		sess.SetInfringementForm(nil)
	}

	h.page(w, r, status, "infringement", "Report Infringement", data)
}
