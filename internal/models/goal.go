package models

// Goal types as created by the client.
const (
	GoalTypeDo     = "do"
	GoalTypeGo     = "go"
	GoalTypeTodo   = "todo"
	GoalTypeLegacy = "legacy"
)

// Goal is an active goal. It lives in the active set until completed.
type Goal struct {
	ID         string      `json:"id"`
	Text       string      `json:"text"`
	Type       string      `json:"type"`
	Place      string      `json:"place"`
	Title      string      `json:"title"`
	Coordinate *Coordinate `json:"coordinate"`
	CreatedAt  int64       `json:"createdAt"`
}

// CompletedRecord is a goal that left the active set.
type CompletedRecord struct {
	Goal
	CompletedAt int64  `json:"completedAt"`
	DateKey     string `json:"dateKey"`
	Memo        string `json:"memo"`
	PhotoURI    string `json:"photoUri"`
}

type CreateGoalRequest struct {
	ID         string      `json:"id"`
	Text       string      `json:"text"`
	Type       string      `json:"type"`
	Place      string      `json:"place"`
	Title      string      `json:"title"`
	Coordinate *Coordinate `json:"coordinate"`
	CreatedAt  int64       `json:"createdAt"`
}

type UpdateRecordRequest struct {
	Memo     *string `json:"memo"`
	PhotoURI *string `json:"photoUri"`
}

// DailySetupMarker records the last day the daily goal setup was finished or skipped.
type DailySetupMarker struct {
	LastDoneDate string `json:"lastDoneDate"`
}

type CompleteDailySetupRequest struct {
	Todos []string `json:"todos"`
}

// DailySetupStatus tells the client whether to show the daily goal prompt.
type DailySetupStatus struct {
	Due          bool   `json:"due"`
	Today        string `json:"today"`
	ReminderTime string `json:"reminderTime"`
	LastDoneDate string `json:"lastDoneDate"`
	RolledOver   int    `json:"rolledOver"`
}
