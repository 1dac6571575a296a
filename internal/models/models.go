package models

import "time"

type User struct {
	ID        int64
	Username  string
	Email     string
	PassHash  []byte
	FirstName *string
	LastName  *string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the public view of a user. The password hash never leaves
// the storage and service layers.
type Profile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

type ResetToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

type EmailMessage struct {
	Email   string `json:"to"`
	Link    string `json:"link"`
	Subject string `json:"subject"`
}

type Expense struct {
	ID                 int64   `json:"id"`
	UserID             int64   `json:"user_id"`
	Amount             float64 `json:"amount"`
	Description        string  `json:"description"`
	Category           string  `json:"category"`
	Date               string  `json:"date"`
	Recurring          bool    `json:"recurring"`
	RecurringFrequency *string `json:"recurring_frequency"`
	Notes              *string `json:"notes"`
	CreatedAt          time.Time `json:"created_at"`
}

type Income struct {
	ID                 int64   `json:"id"`
	UserID             int64   `json:"user_id"`
	Amount             float64 `json:"amount"`
	Source             string  `json:"source"`
	Date               string  `json:"date"`
	Recurring          bool    `json:"recurring"`
	RecurringFrequency *string `json:"recurring_frequency"`
	Notes              *string `json:"notes"`
	CreatedAt          time.Time `json:"created_at"`
}

type Budget struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	Category  string  `json:"category"`
	Amount    float64 `json:"amount"`
	Month     string  `json:"month"`
	Spent     float64 `json:"spent"`
	Notes     *string `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

type WishlistItem struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Priority   string  `json:"priority"`
	URL        *string `json:"url"`
	Notes      *string `json:"notes"`
	TargetDate *string `json:"target_date"`
	Saved      float64 `json:"saved"`
	CreatedAt  time.Time `json:"created_at"`
}

type MonthlyReport struct {
	Month         string  `json:"month"`
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	SavingsRate   float64 `json:"savings_rate"`
}
