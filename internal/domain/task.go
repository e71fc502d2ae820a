package domain

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task is one entry of the to-do list kept next to the board.
type Task struct {
	ID       int64    `json:"id"`
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
	Done     bool     `json:"done"`
}

// DefaultTasks seeds the list when nothing has been stored yet.
func DefaultTasks() []Task {
	return []Task{
		{ID: 1, Text: "Deploy the board to GitHub", Priority: PriorityHigh},
		{ID: 2, Text: "Write README.md", Priority: PriorityMedium},
		{ID: 3, Text: "Have a coffee", Priority: PriorityLow, Done: true},
	}
}
