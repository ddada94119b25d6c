package model

// 任务状态
const (
	TaskToDo       = "to_do"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskFinalize   = "finalize"
)

// Task 任务，parent_task_id支持任意深度嵌套
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Status        string     `json:"status"`
	DueDate       string     `json:"due_date,omitempty"`
	ParentTaskID  string     `json:"parent_task_id,omitempty"`
	ProjectID     string     `json:"project_id,omitempty"`
	DeliverableID string     `json:"deliverable_id,omitempty"`
	AssigneeIDs   StringList `json:"assignee_ids"`
	VoiceNoteURL  string     `json:"voice_note_url,omitempty"`
}

// ValidStatus 是否合法任务状态
func ValidStatus(s string) bool {
	switch s {
	case TaskToDo, TaskInProgress, TaskCompleted, TaskFinalize:
		return true
	}
	return false
}

// Deliverable 交付物
type Deliverable struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ProjectID string   `json:"project_id"`
	Unit      WorkUnit `json:"unit"`
}

// TaskCreate 任务创建表单
type TaskCreate struct {
	Title         string   `json:"title" validate:"required"`
	Status        string   `json:"status" validate:"omitempty,oneof=to_do in_progress completed finalize"`
	DueDate       string   `json:"due_date,omitempty"`
	ParentTaskID  string   `json:"parent_task_id,omitempty"`
	ProjectID     string   `json:"project_id,omitempty"`
	DeliverableID string   `json:"deliverable_id,omitempty"`
	AssigneeIDs   []string `json:"assignee_ids,omitempty"`
	VoiceNoteURL  string   `json:"voice_note_url,omitempty"`
}
