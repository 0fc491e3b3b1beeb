package model

const DefaultCategory = "General"

// DateLayout is the wire and storage format of Todo.DueDate.
const DateLayout = "2006-01-02"

type Todo struct {
	ID        int64   `json:"id" db:"id"`
	Title     string  `json:"title" db:"title"`
	Completed bool    `json:"completed" db:"completed"`
	UserID    int64   `json:"user_id" db:"user_id"`
	DueDate   *string `json:"due_date" db:"due_date"`
	Category  string  `json:"category" db:"category"`
}

// TodoFilter narrows a list query. Zero values mean "no filter".
type TodoFilter struct {
	DueDate   string
	Completed *bool
	Category  string
}

// ImportResult is the outcome of importing a single calendar URL.
type ImportResult struct {
	URL      string `json:"url"`
	Events   int    `json:"events"`
	Imported int    `json:"imported"`
	Failed   int    `json:"failed"`
	Error    string `json:"error,omitempty"`
}

type ImportReport struct {
	Imported int            `json:"imported"`
	Results  []ImportResult `json:"results"`
	Message  string         `json:"message,omitempty"`
}
