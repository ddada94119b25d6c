package model

// WorkUnit 工作单元，一个拍摄角色席位或一个交付物
// Required缺省时按1处理(见RequiredCount)
type WorkUnit struct {
	ID       string     `json:"id"`
	Required FlexInt    `json:"required"`
	Assigned StringList `json:"assigned"`
}

// RequiredCount 需求人数，最小为1
func (w WorkUnit) RequiredCount() int {
	if w.Required < 1 {
		return 1
	}
	return int(w.Required)
}

// Shoot 拍摄场次，Services为角色名到席位的映射
type Shoot struct {
	ID       string              `json:"id"`
	Title    string              `json:"title"`
	Date     string              `json:"date"`
	Time     string              `json:"time"`
	Venue    string              `json:"venue"`
	Services map[string]WorkUnit `json:"services"`
}

// AssignmentUpdate 席位分配提交体
type AssignmentUpdate struct {
	ServiceName string   `json:"serviceName" validate:"required"`
	AssigneeIDs []string `json:"assigneeIds"`
}
