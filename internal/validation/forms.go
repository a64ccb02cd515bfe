package validation

// LoginForm はログインフォームの入力値。
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate はログインフォームを検証する。
func (f LoginForm) Validate() Errors {
	v := New()
	v.Required("email", f.Email, "Email is required").
		Email("email", f.Email, "Invalid email address")
	v.Required("password", f.Password, "Password is required").
		MinLength("password", f.Password, MinPasswordLength, "Password must be at least 6 characters")
	return v.Errors()
}

// RegisterForm は会員登録フォームの入力値。
type RegisterForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate は会員登録フォームを検証する。
func (f RegisterForm) Validate() Errors {
	v := New()
	v.Required("name", f.Name, "Name is required")
	v.Required("email", f.Email, "Email is required").
		Email("email", f.Email, "Invalid email address")
	v.Phone("phone", f.Phone, "Invalid phone number")
	v.Required("password", f.Password, "Password is required").
		MinLength("password", f.Password, MinPasswordLength, "Password must be at least 6 characters")
	v.Required("confirmPassword", f.ConfirmPassword, "Please confirm your password").
		Equal("confirmPassword", f.ConfirmPassword, f.Password, "Passwords do not match")
	return v.Errors()
}

// ProfileForm はプロフィール編集フォームの入力値。
type ProfileForm struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Validate はプロフィール編集フォームを検証する。
func (f ProfileForm) Validate() Errors {
	v := New()
	v.Required("name", f.Name, "Name is required")
	v.Required("email", f.Email, "Email is required").
		Email("email", f.Email, "Invalid email address")
	v.Phone("phone", f.Phone, "Invalid phone number")
	return v.Errors()
}

// PasswordForm はパスワード変更フォームの入力値。
type PasswordForm struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate はパスワード変更フォームを検証する。
func (f PasswordForm) Validate() Errors {
	v := New()
	v.Required("currentPassword", f.CurrentPassword, "Current password is required")
	v.Required("newPassword", f.NewPassword, "New password is required").
		MinLength("newPassword", f.NewPassword, MinPasswordLength, "Password must be at least 6 characters")
	v.Required("confirmPassword", f.ConfirmPassword, "Please confirm your new password").
		Equal("confirmPassword", f.ConfirmPassword, f.NewPassword, "Passwords do not match")
	return v.Errors()
}

// ContactForm はお問い合わせフォームの入力値。
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate はお問い合わせフォームを検証する。
func (f ContactForm) Validate() Errors {
	v := New()
	v.Required("name", f.Name, "Name is required")
	v.Required("email", f.Email, "Email is required").
		Email("email", f.Email, "Invalid email address")
	v.Phone("phone", f.Phone, "Invalid phone number")
	v.Required("subject", f.Subject, "Subject is required")
	v.Required("message", f.Message, "Message is required").
		MinLength("message", f.Message, 10, "Message must be at least 10 characters")
	return v.Errors()
}

// TicketCategories はチケット作成時に選択できるカテゴリ。
var TicketCategories = []string{"hardware", "software", "network", "other"}

// TicketPriorities はチケット作成時に選択できる優先度。
var TicketPriorities = []string{"low", "medium", "high"}

// TicketForm はチケット作成フォームの入力値。
type TicketForm struct {
	Subject     string `json:"subject"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
}

// Validate はチケット作成フォームを検証する。
func (f TicketForm) Validate() Errors {
	v := New()
	v.Required("subject", f.Subject, "Le sujet est requis").
		MinLength("subject", f.Subject, 5, "Le sujet doit contenir au moins 5 caractères")
	v.Required("category", f.Category, "La catégorie est requise").
		OneOf("category", f.Category, TicketCategories, "Catégorie inconnue")
	v.Required("priority", f.Priority, "La priorité est requise").
		OneOf("priority", f.Priority, TicketPriorities, "Priorité inconnue")
	v.Required("description", f.Description, "La description est requise").
		MinLength("description", f.Description, 20, "La description doit contenir au moins 20 caractères")
	return v.Errors()
}
