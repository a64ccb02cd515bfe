package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/supportdesk/internal/middleware"
	"github.com/hitoshi/supportdesk/internal/model"
	"github.com/hitoshi/supportdesk/internal/session"
)

// identityResponse はIdentityのAPIレスポンス。
type identityResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// sessionResponse はSessionのAPIレスポンス。
type sessionResponse struct {
	IsAuthenticated bool              `json:"isAuthenticated"`
	User            *identityResponse `json:"user"`
}

func toIdentityResponse(identity *model.Identity) *identityResponse {
	if identity == nil {
		return nil
	}
	return &identityResponse{
		ID:    identity.ID,
		Name:  identity.Name,
		Email: identity.Email,
		Phone: identity.Phone,
	}
}

func toSessionResponse(sess model.Session) sessionResponse {
	return sessionResponse{
		IsAuthenticated: sess.IsAuthenticated(),
		User:            toIdentityResponse(sess.Identity),
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// decodeJSON はリクエストボディをdstにデコードする。
// 失敗した場合は400レスポンスを書き込んでfalseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "The request body could not be parsed.",
			Category: "validation",
			Action:   "Send the request as valid JSON.",
		})
		return false
	}
	return true
}

// requestStore はSessionMiddlewareが注入したStoreを返す。
// 存在しない場合は500レスポンスを書き込んでnilを返す。
func requestStore(w http.ResponseWriter, r *http.Request) *session.Store {
	store, err := middleware.StoreFromContext(r.Context())
	if err != nil {
		slog.Error("session store missing from request", slog.String("path", r.URL.Path))
		middleware.WriteInternalServerError(w)
		return nil
	}
	return store
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidationFailed, model.ErrCodeInvalidForm, model.ErrCodeInvalidFilter:
		return http.StatusBadRequest
	case model.ErrCodeNotAuthenticated:
		return http.StatusUnauthorized
	case model.ErrCodeTicketNotFound:
		return http.StatusNotFound
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
