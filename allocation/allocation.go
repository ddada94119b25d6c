// Package allocation 拍摄席位/任务的人员分配选择模型，容量约束在选择时生效
package allocation

import (
	"strings"

	"github.com/firsthash/console/model"
)

// Kind 工作单元类型，决定提交走哪个接口
type Kind int

const (
	KindShootService Kind = iota
	KindTask
)

// Committer 提交端，由store实现
type Committer interface {
	CommitShootAssignment(shootID, serviceName string, assigneeIds []string) error
	CommitTaskAssignees(taskID string, assigneeIds []string) error
}

// Selection 一个工作单元的选择状态
type Selection struct {
	kind        Kind
	workUnitID  string
	serviceName string
	required    int
	assigned    []string
	original    []string
}

// NewShootSelection 拍摄角色席位的选择
func NewShootSelection(shootID, serviceName string, unit model.WorkUnit) *Selection {
	s := newSelection(KindShootService, shootID, unit)
	s.serviceName = serviceName
	return s
}

// NewTaskSelection 任务负责人的选择
func NewTaskSelection(taskID string, unit model.WorkUnit) *Selection {
	return newSelection(KindTask, taskID, unit)
}

func newSelection(kind Kind, id string, unit model.WorkUnit) *Selection {
	assigned := make([]string, 0, len(unit.Assigned))
	seen := make(map[string]struct{}, len(unit.Assigned))
	for _, m := range unit.Assigned {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		assigned = append(assigned, m)
	}
	original := make([]string, len(assigned))
	copy(original, assigned)
	return &Selection{
		kind:       kind,
		workUnitID: id,
		required:   unit.RequiredCount(),
		assigned:   assigned,
		original:   original,
	}
}

// Required 需求人数
func (s *Selection) Required() int {
	return s.required
}

// Assigned 当前已选，返回拷贝
func (s *Selection) Assigned() []string {
	out := make([]string, len(s.assigned))
	copy(out, s.assigned)
	return out
}

// Full 容量已满，界面据此禁用继续勾选
func (s *Selection) Full() bool {
	return len(s.assigned) >= s.required
}

// IsAssigned 成员是否已选
func (s *Selection) IsAssigned(memberID string) bool {
	for _, m := range s.assigned {
		if m == memberID {
			return true
		}
	}
	return false
}

// Toggle 勾选切换。已选则移除；未选且未满则加入；超出容量静默拒绝
// 返回选择是否发生变化
func (s *Selection) Toggle(memberID string) bool {
	for i, m := range s.assigned {
		if m == memberID {
			s.assigned = append(s.assigned[:i], s.assigned[i+1:]...)
			return true
		}
	}
	if len(s.assigned) >= s.required {
		return false
	}
	s.assigned = append(s.assigned, memberID)
	return true
}

// Delta 相对初始选择的增减，仅用于确认界面展示，提交始终发送全量列表
func (s *Selection) Delta() (added, removed []string) {
	return Delta(s.original, s.assigned)
}

// Delta 两个选择集的双向差集
func Delta(original, current []string) (added, removed []string) {
	origSet := make(map[string]struct{}, len(original))
	for _, m := range original {
		origSet[m] = struct{}{}
	}
	curSet := make(map[string]struct{}, len(current))
	for _, m := range current {
		curSet[m] = struct{}{}
	}
	for _, m := range current {
		if _, ok := origSet[m]; !ok {
			added = append(added, m)
		}
	}
	for _, m := range original {
		if _, ok := curSet[m]; !ok {
			removed = append(removed, m)
		}
	}
	return added, removed
}

// Commit 经乐观更新引擎提交全量已选列表
func (s *Selection) Commit(c Committer) error {
	switch s.kind {
	case KindShootService:
		return c.CommitShootAssignment(s.workUnitID, s.serviceName, s.Assigned())
	default:
		return c.CommitTaskAssignees(s.workUnitID, s.Assigned())
	}
}

// FilterMembers 选择器搜索，姓名与角色名的大小写不敏感子串匹配，只读不动选择
func FilterMembers(members []model.Member, query string) []model.Member {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		out := make([]model.Member, len(members))
		copy(out, members)
		return out
	}
	out := make([]model.Member, 0, len(members))
	for _, m := range members {
		haystack := strings.ToLower(m.Name + " " + m.RoleNames())
		if strings.Contains(haystack, query) {
			out = append(out, m)
		}
	}
	return out
}
