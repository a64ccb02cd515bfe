// Package content はサイトの静的コンテンツ（提供サービス、よくある質問）と
// お問い合わせフォームの受付を提供する。
package content

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/hitoshi/supportdesk/internal/clock"
	"github.com/hitoshi/supportdesk/internal/model"
	"github.com/hitoshi/supportdesk/internal/security"
	"github.com/hitoshi/supportdesk/internal/validation"
)

// Service は静的コンテンツとお問い合わせ受付のサービス層。
type Service struct {
	sanitizer    security.TextSanitizer
	delayer      clock.Delayer
	contactDelay time.Duration
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(sanitizer security.TextSanitizer, delayer clock.Delayer, contactDelay time.Duration) *Service {
	return &Service{
		sanitizer:    sanitizer,
		delayer:      delayer,
		contactDelay: contactDelay,
	}
}

// Offerings は提供サービスの一覧を返す。
func (s *Service) Offerings() []Offering {
	out := make([]Offering, len(offerings))
	for i, o := range offerings {
		o.Details = slices.Clone(o.Details)
		out[i] = o
	}
	return out
}

// FAQ は質問または回答に検索語を含む項目をカテゴリごとに返す。
// 該当項目のないカテゴリは除外する。検索語が空の場合は全件を返す。
func (s *Service) FAQ(search string) []FAQCategory {
	needle := strings.ToLower(strings.TrimSpace(search))

	out := make([]FAQCategory, 0, len(faqs))
	for _, c := range faqs {
		var items []FAQItem
		for _, item := range c.Items {
			if needle == "" ||
				strings.Contains(strings.ToLower(item.Question), needle) ||
				strings.Contains(strings.ToLower(item.Answer), needle) {
				items = append(items, item)
			}
		}
		if len(items) > 0 {
			out = append(out, FAQCategory{Category: c.Category, Items: items})
		}
	}
	return out
}

// SubmitContact はお問い合わせを受け付ける。
// 送信先がないため、サニタイズした内容をログに記録するのみ。
func (s *Service) SubmitContact(ctx context.Context, form validation.ContactForm) error {
	s.delayer.Delay(s.contactDelay)

	form.Subject = s.sanitizer.Sanitize(form.Subject)
	form.Message = s.sanitizer.Sanitize(form.Message)
	if errs := form.Validate(); errs != nil {
		return model.NewInvalidFormError(errs)
	}

	slog.Info("contact request received",
		slog.String("email", form.Email),
		slog.String("subject", form.Subject),
		slog.Int("message_length", len(form.Message)),
	)
	return nil
}
