package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/supportdesk/internal/content"
	"github.com/hitoshi/supportdesk/internal/validation"
)

// ContentServiceInterface は公開ページのハンドラーが必要とするサービスインターフェース。
type ContentServiceInterface interface {
	Offerings() []content.Offering
	FAQ(search string) []content.FAQCategory
	SubmitContact(ctx context.Context, form validation.ContactForm) error
}

var _ ContentServiceInterface = (*content.Service)(nil)

// PageHandler は公開ページのHTTPハンドラー。
type PageHandler struct {
	service ContentServiceInterface
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(service ContentServiceInterface) *PageHandler {
	return &PageHandler{service: service}
}

type homeResponse struct {
	Session   sessionResponse    `json:"session"`
	Offerings []content.Offering `json:"offerings"`
}

// Home はトップページを返す。
// GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	store := requestStore(w, r)
	if store == nil {
		return
	}
	writeJSON(w, http.StatusOK, homeResponse{
		Session:   toSessionResponse(store.Session()),
		Offerings: h.service.Offerings(),
	})
}

// Services は提供サービス一覧を返す。
// GET /services
func (h *PageHandler) Services(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Offerings())
}

// FAQ はよくある質問を返す。
// GET /faq?q=...
func (h *PageHandler) FAQ(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.FAQ(r.URL.Query().Get("q")))
}

// ContactPage はお問い合わせページを返す。
// GET /contact
func (h *PageHandler) ContactPage(w http.ResponseWriter, r *http.Request) {
	store := requestStore(w, r)
	if store == nil {
		return
	}
	writeJSON(w, http.StatusOK, formPageResponse{Page: "contact", Session: toSessionResponse(store.Session())})
}

// SubmitContact はお問い合わせを受け付ける。
// POST /contact
func (h *PageHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var form validation.ContactForm
	if !decodeJSON(w, r, &form) {
		return
	}

	if err := h.service.SubmitContact(r.Context(), form); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, messageResponse{Message: "Message sent successfully"})
}
