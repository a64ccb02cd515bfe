// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string            // エラーコード
	Message  string            // エラーメッセージ
	Category string            // カテゴリ: auth, validation, ticket, system
	Action   string            // ユーザー向け対処方法
	Fields   map[string]string // フィールド単位のエラー（フォーム検証時のみ）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidForm      = "INVALID_FORM"
	ErrCodeNotAuthenticated = "NOT_AUTHENTICATED"
	ErrCodeTicketNotFound   = "TICKET_NOT_FOUND"
	ErrCodeInvalidFilter    = "INVALID_FILTER"
	ErrCodeRateLimited      = "RATE_LIMITED"
)

// NewValidationError はセッション操作の必須項目違反エラーを生成する。
// 操作は入力が上流で検証済みであっても必須チェックを独自に行い、違反時にこのエラーを返す。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  message,
		Category: "validation",
		Action:   "Fill in the required fields and submit the form again.",
	}
}

// NewInvalidFormError はフォーム検証エラーを生成する。
// fieldsにはフィールド名ごとのエラーメッセージを格納する。
func NewInvalidFormError(fields map[string]string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidForm,
		Message:  "The form contains invalid fields.",
		Category: "validation",
		Action:   "Correct the highlighted fields and submit the form again.",
		Fields:   fields,
	}
}

// NewNotAuthenticatedError はサインインしていない状態での操作エラーを生成する。
func NewNotAuthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeNotAuthenticated,
		Message:  "You must be signed in to perform this action.",
		Category: "auth",
		Action:   "Sign in and try again.",
	}
}

// NewTicketNotFoundError はチケット未検出エラーを生成する。
func NewTicketNotFoundError(ticketID string) *APIError {
	return &APIError{
		Code:     ErrCodeTicketNotFound,
		Message:  fmt.Sprintf("Ticket not found: %s", ticketID),
		Category: "ticket",
		Action:   "Check the ticket number and try again.",
	}
}

// NewInvalidFilterError は無効なステータスフィルタエラーを生成する。
func NewInvalidFilterError(filter string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFilter,
		Message:  fmt.Sprintf("Invalid status filter: %s", filter),
		Category: "validation",
		Action:   "Use one of all, open, in_progress, resolved or closed.",
	}
}

// IsValidationError はerrがvalidationカテゴリのAPIErrorかどうかを判定する。
func IsValidationError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Category == "validation"
}
