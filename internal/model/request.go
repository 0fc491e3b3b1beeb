package model

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest accepts either a username or an email as the identifier.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Identifier() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// TodoInput carries the client-supplied fields of a create or full update.
// Pointers distinguish absent fields from zero values.
type TodoInput struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
	DueDate   *string `json:"due_date"`
	Category  *string `json:"category"`
	UserID    *int64  `json:"user_id"`
}

type ProxyICalRequest struct {
	URL string `json:"url"`
}

type ProxyICalResponse struct {
	ICal string `json:"ical"`
}

type ImportRequest struct {
	URLs     []string `json:"urls"`
	Category string   `json:"category"`
}
