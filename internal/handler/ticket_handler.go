package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/supportdesk/internal/model"
	"github.com/hitoshi/supportdesk/internal/ticket"
	"github.com/hitoshi/supportdesk/internal/validation"
)

// TicketServiceInterface はチケットハンドラーが必要とするサービスインターフェース。
type TicketServiceInterface interface {
	List(ctx context.Context, filter model.TicketFilter) ([]model.Ticket, error)
	Get(ctx context.Context, viewerID, id string) (*model.Ticket, error)
	Create(ctx context.Context, author model.Identity, form validation.TicketForm) (*model.Ticket, error)
	AddMessage(ctx context.Context, author model.Identity, ticketID, content string) (*model.Ticket, error)
	Dashboard(ctx context.Context, viewerID string) (*ticket.Dashboard, error)
}

var _ TicketServiceInterface = (*ticket.Service)(nil)

// TicketHandler はクライアントポータルのHTTPハンドラー。
type TicketHandler struct {
	service TicketServiceInterface
}

// NewTicketHandler はTicketHandlerを生成する。
func NewTicketHandler(service TicketServiceInterface) *TicketHandler {
	return &TicketHandler{service: service}
}

// ticketSummaryResponse は一覧表示用のチケット。
type ticketSummaryResponse struct {
	ID           string    `json:"id"`
	Subject      string    `json:"subject"`
	Category     string    `json:"category"`
	Priority     string    `json:"priority"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	LastUpdate   time.Time `json:"lastUpdate"`
	MessageCount int       `json:"messageCount"`
}

// ticketMessageResponse はチケットメッセージのAPIレスポンス。
type ticketMessageResponse struct {
	ID        int       `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsStaff   bool      `json:"isStaff"`
}

// ticketDetailResponse は詳細表示用のチケット。
type ticketDetailResponse struct {
	ticketSummaryResponse
	Description string                  `json:"description"`
	Messages    []ticketMessageResponse `json:"messages"`
}

// dashboardStatsResponse はダッシュボード集計値のAPIレスポンス。
type dashboardStatsResponse struct {
	TotalTickets        int    `json:"totalTickets"`
	OpenTickets         int    `json:"openTickets"`
	ResolvedTickets     int    `json:"resolvedTickets"`
	ClosedTickets       int    `json:"closedTickets"`
	AverageResponseTime string `json:"averageResponseTime"`
	SatisfactionRate    string `json:"satisfactionRate"`
}

// dashboardResponse はダッシュボードのAPIレスポンス。
type dashboardResponse struct {
	User          *identityResponse       `json:"user"`
	Stats         dashboardStatsResponse  `json:"stats"`
	RecentTickets []ticketSummaryResponse `json:"recentTickets"`
}

// addMessageRequest はメッセージ追加のリクエストボディ。
type addMessageRequest struct {
	Content string `json:"content"`
}

func toTicketSummaryResponse(t model.Ticket) ticketSummaryResponse {
	return ticketSummaryResponse{
		ID:           t.ID,
		Subject:      t.Subject,
		Category:     t.Category,
		Priority:     string(t.Priority),
		Status:       string(t.Status),
		CreatedAt:    t.CreatedAt,
		LastUpdate:   t.LastUpdate,
		MessageCount: len(t.Messages),
	}
}

func toTicketSummaries(tickets []model.Ticket) []ticketSummaryResponse {
	resp := make([]ticketSummaryResponse, 0, len(tickets))
	for _, t := range tickets {
		resp = append(resp, toTicketSummaryResponse(t))
	}
	return resp
}

func toTicketDetailResponse(t *model.Ticket) ticketDetailResponse {
	messages := make([]ticketMessageResponse, 0, len(t.Messages))
	for _, m := range t.Messages {
		messages = append(messages, ticketMessageResponse{
			ID:        m.ID,
			UserID:    m.UserID,
			UserName:  m.UserName,
			Content:   m.Content,
			Timestamp: m.Timestamp,
			IsStaff:   m.IsStaff,
		})
	}
	return ticketDetailResponse{
		ticketSummaryResponse: toTicketSummaryResponse(*t),
		Description:           t.Description,
		Messages:              messages,
	}
}

// Dashboard はクライアントダッシュボードを返す。
// GET /client
func (h *TicketHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), identity.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	stats := dashboard.Stats
	writeJSON(w, http.StatusOK, dashboardResponse{
		User: toIdentityResponse(&identity),
		Stats: dashboardStatsResponse{
			TotalTickets:        stats.TotalTickets,
			OpenTickets:         stats.OpenTickets,
			ResolvedTickets:     stats.ResolvedTickets,
			ClosedTickets:       stats.ClosedTickets,
			AverageResponseTime: stats.AverageResponseTime,
			SatisfactionRate:    stats.SatisfactionRate,
		},
		RecentTickets: toTicketSummaries(dashboard.Recent),
	})
}

// ListTickets はチケット一覧を返す。
// GET /client/tickets?q=...&status=...
func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	status, err := ticket.ParseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	tickets, err := h.service.List(r.Context(), model.TicketFilter{
		ViewerID: identity.ID,
		Search:   r.URL.Query().Get("q"),
		Status:   status,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTicketSummaries(tickets))
}

// CreateTicket はチケットを作成する。
// POST /client/tickets
func (h *TicketHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var form validation.TicketForm
	if !decodeJSON(w, r, &form) {
		return
	}

	t, err := h.service.Create(r.Context(), identity, form)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTicketDetailResponse(t))
}

// GetTicket はチケット詳細を返す。
// GET /client/tickets/{id}
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	t, err := h.service.Get(r.Context(), identity.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTicketDetailResponse(t))
}

// AddMessage はチケットにメッセージを追加する。
// POST /client/tickets/{id}/messages
func (h *TicketHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req addMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.service.AddMessage(r.Context(), identity, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTicketDetailResponse(t))
}

// requestIdentity はリクエストのSessionからサインイン中のIdentityを取り出す。
// 未サインインの場合は401レスポンスを書き込んでfalseを返す。
func requestIdentity(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	store := requestStore(w, r)
	if store == nil {
		return model.Identity{}, false
	}
	identity := store.Session().Identity
	if identity == nil {
		handleServiceError(w, model.NewNotAuthenticatedError())
		return model.Identity{}, false
	}
	return *identity, true
}
