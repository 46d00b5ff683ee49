package httptransport

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"share-ingest-service/internal/entity"
	"share-ingest-service/internal/service"
)

type Handler struct {
	dispatcher *service.Dispatcher
	maxBytes   int64
}

func NewHandler(dispatcher *service.Dispatcher, maxBytes int64) *Handler {
	return &Handler{dispatcher: dispatcher, maxBytes: maxBytes}
}

type shareItemResp struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

type shareResp struct {
	State     string          `json:"state"` // done | stalled | cancelled
	Mode      string          `json:"mode,omitempty"`
	Total     int             `json:"total"`
	Published int             `json:"published"`
	Items     []shareItemResp `json:"items,omitempty"`
}

// ListModes godoc
// @Summary List processing modes
// @Description Ordered candidate modes for the selection prompt.
// @Tags share
// @Produce json
// @Success 200 {array} entity.ModeChoice
// @Router /modes [get]
func (h *Handler) ListModes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, entity.ModeChoices())
}

// Share godoc
// @Summary Ingest one shared text or image batch
// @Description Multipart form: "mode" (selection key, empty = cancelled) plus either "text" or one-or-more "images" files. Each item becomes one queue record; image bytes go to the content store first.
// @Tags share
// @Accept mpfd
// @Produce json
// @Param mode formData string false "processing mode key"
// @Param text formData string false "shared text snippet"
// @Param images formData file false "shared images (repeatable)"
// @Success 201 {object} shareResp "every item enqueued"
// @Success 200 {object} shareResp "cancelled or partially enqueued"
// @Failure 400 {object} apiError
// @Router /share [post]
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	payload, err := buildPayload(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	reqID := middleware.GetReqID(r.Context())
	status := func(line string) {
		log.Printf("[ingest] req_id=%s status=%q", reqID, line)
	}

	res, err := h.dispatcher.Dispatch(r.Context(), payload, r.FormValue("mode"), status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelectionCancelled):
			writeJSON(w, http.StatusOK, shareResp{State: "cancelled"})
		case errors.Is(err, service.ErrUnknownMode),
			errors.Is(err, service.ErrUnsupportedPayload):
			writeErr(w, http.StatusBadRequest, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	resp := shareResp{
		State:     "stalled",
		Mode:      string(res.Mode),
		Total:     res.Total,
		Published: res.Published,
	}
	code := http.StatusOK
	if res.Done {
		resp.State = "done"
		code = http.StatusCreated
	}
	for _, it := range res.Items {
		item := shareItemResp{Index: it.Index}
		if it.ID != uuid.Nil {
			item.ID = it.ID.String()
		}
		if it.Err != nil {
			item.Error = it.Err.Error()
		}
		resp.Items = append(resp.Items, item)
	}

	writeJSON(w, code, resp)
}

// buildPayload maps the multipart form onto the share payload shape: a text
// field or a list of image files, plus the content-type tag. Ambiguous
// forms fall through with an empty tag and are rejected by the dispatcher.
func buildPayload(r *http.Request) (service.Payload, error) {
	text := r.FormValue("text")

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["images"]
	}

	switch {
	case text != "" && len(files) == 0:
		return service.Payload{ContentType: "text/plain", Text: text}, nil

	case len(files) > 0 && text == "":
		p := service.Payload{}
		for _, fh := range files {
			data, err := readFilePart(fh)
			if err != nil {
				return service.Payload{}, err
			}
			if p.ContentType == "" {
				p.ContentType = imageContentType(fh, data)
			}
			p.Images = append(p.Images, service.Asset{Name: fh.Filename, Data: data})
		}
		return p, nil

	default:
		// Neither or both: let the dispatcher report the rejection.
		return service.Payload{}, nil
	}
}

func readFilePart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("unreadable file part: " + fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.New("unreadable file part: " + fh.Filename)
	}
	return data, nil
}

// imageContentType prefers the part's declared type and falls back to
// sniffing, since many clients send files as application/octet-stream.
func imageContentType(fh *multipart.FileHeader, data []byte) string {
	if ct := fh.Header.Get("Content-Type"); strings.HasPrefix(ct, "image/") {
		return ct
	}
	return http.DetectContentType(data)
}
