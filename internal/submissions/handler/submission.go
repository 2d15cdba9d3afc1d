package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"deca/internal/submissions/mapper"
	"deca/internal/submissions/service"
	httputil "deca/pkg/http"
	"deca/pkg/logger"
	"deca/pkg/middleware"
)

const (
	SubmissionsRoute = "/api/v1/submissions"
	PreviewRoute     = "/api/v1/submissions/preview"

	// SourceHeader lets a sender name itself in the envelope metadata.
	SourceHeader = "X-Source-System"
)

type SubmissionHandler struct {
	service service.SubmissionService
	mapper  *mapper.Mapper
	log     *logger.Logger
	now     func() time.Time
}

func NewSubmissionHandler(service service.SubmissionService, mapper *mapper.Mapper, log *logger.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		mapper:  mapper,
		log:     log,
		now:     time.Now,
	}
}

// Submit runs a submission through the pipeline and its side effects. SKIP
// and ERROR decisions are still 200: the request was handled, the decision
// says what happened to the row.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	in, ok := h.intake(w, r, "Submit")
	if !ok {
		return
	}

	env, err := h.service.Process(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, env)
}

// Preview returns the decision without storing or publishing it.
func (h *SubmissionHandler) Preview(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	in, ok := h.intake(w, r, "Preview")
	if !ok {
		return
	}

	httputil.WriteSuccess(w, h.service.Preview(r.Context(), in))
}

func (h *SubmissionHandler) intake(w http.ResponseWriter, r *http.Request, handlerName string) (service.Intake, bool) {
	payload, err := httputil.ReadPayload(r)
	if err != nil {
		h.log.Warn("Rejected submission body",
			"handler", handlerName,
			"request_id", middleware.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return service.Intake{}, false
	}

	result, err := h.mapper.Map(payload)
	if err != nil {
		h.log.Warn("Rejected submission payload",
			"handler", handlerName,
			"request_id", middleware.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return service.Intake{}, false
	}

	if len(result.Unmapped) > 0 {
		h.log.Debug("Ignored unknown payload keys",
			"handler", handlerName,
			"request_id", middleware.RequestID(r.Context()),
			"keys", result.Unmapped,
		)
	}

	submissionID := result.SubmissionID
	if submissionID == "" {
		submissionID = "sub-" + strconv.FormatInt(h.now().UnixMilli(), 10)
	}

	return service.Intake{
		Raw:          result.Raw,
		SubmissionID: submissionID,
		Source:       r.Header.Get(SourceHeader),
	}, true
}

func (h *SubmissionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(SubmissionsRoute, middleware.Instrument(http.MethodPost, SubmissionsRoute, h.Submit))
	router.POST(PreviewRoute, middleware.Instrument(http.MethodPost, PreviewRoute, h.Preview))
}
