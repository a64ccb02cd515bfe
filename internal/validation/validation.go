// Package validation はフォーム入力のフィールド単位検証を提供する。
//
// 必須、最小文字数、メールアドレス・電話番号の形式、確認入力の一致を検証し、
// フィールド名ごとのエラーメッセージを返す。セッション操作はこの検証結果を信頼せず、
// 必須項目を独自に再検証する。
package validation

import (
	"regexp"
	"unicode/utf8"
)

var (
	emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`(?i)^[+]?[(]?[0-9]{3}[)]?[-\s.]?[0-9]{3}[-\s.]?[0-9]{4,6}$`)
)

// MinPasswordLength はパスワードの最小文字数。
const MinPasswordLength = 6

// Errors はフィールド名からエラーメッセージへのマップ。
// 各フィールドは最初に失敗したルールのメッセージのみを保持する。
type Errors map[string]string

// Validator はルールを順に適用し、フィールドごとの最初のエラーを記録する。
type Validator struct {
	errs Errors
}

// New は空のValidatorを生成する。
func New() *Validator {
	return &Validator{errs: Errors{}}
}

// Required は値が空の場合にエラーを記録する。
func (v *Validator) Required(field, value, message string) *Validator {
	if value == "" {
		v.add(field, message)
	}
	return v
}

// MinLength は値が空でなく、かつ文字数がminに満たない場合にエラーを記録する。
// 空の値はRequiredで扱う。
func (v *Validator) MinLength(field, value string, min int, message string) *Validator {
	if value != "" && utf8.RuneCountInString(value) < min {
		v.add(field, message)
	}
	return v
}

// Email は値が空でなく、メールアドレス形式でない場合にエラーを記録する。
func (v *Validator) Email(field, value, message string) *Validator {
	if value != "" && !emailPattern.MatchString(value) {
		v.add(field, message)
	}
	return v
}

// Phone は値が空でなく、電話番号形式でない場合にエラーを記録する。
func (v *Validator) Phone(field, value, message string) *Validator {
	if value != "" && !phonePattern.MatchString(value) {
		v.add(field, message)
	}
	return v
}

// Equal は確認入力がotherと一致しない場合にエラーを記録する。
func (v *Validator) Equal(field, value, other, message string) *Validator {
	if value != other {
		v.add(field, message)
	}
	return v
}

// OneOf は値が空でなく、allowedのいずれにも一致しない場合にエラーを記録する。
func (v *Validator) OneOf(field, value string, allowed []string, message string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, message)
	return v
}

// Valid はエラーが1件もない場合にtrueを返す。
func (v *Validator) Valid() bool {
	return len(v.errs) == 0
}

// Errors は記録されたエラーを返す。エラーがない場合はnilを返す。
func (v *Validator) Errors() Errors {
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

func (v *Validator) add(field, message string) {
	if _, exists := v.errs[field]; exists {
		return
	}
	v.errs[field] = message
}
