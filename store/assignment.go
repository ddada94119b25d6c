package store

import (
	"github.com/firsthash/console/allocation"
	"github.com/firsthash/console/errors"
	"github.com/firsthash/console/model"
)

// Store是分配选择模型的提交端
var _ allocation.Committer = (*Store)(nil)

// ErrShootNotFound 拍摄场次不存在
var ErrShootNotFound = errors.New("拍摄场次不存在")

// CommitTaskAssignees 乐观提交任务负责人，始终发送全量列表
func (s *Store) CommitTaskAssignees(taskID string, assigneeIds []string) error {
	s.mu.Lock()
	if indexOfTask(s.tasks, taskID) < 0 {
		s.mu.Unlock()
		return ErrTaskNotFound
	}
	s.mu.Unlock()

	return s.run(mutation{
		entity: "task",
		id:     taskID,
		apply: func() func() {
			j := indexOfTask(s.tasks, taskID)
			if j < 0 {
				return func() {}
			}
			prev := s.tasks[j].AssigneeIDs
			s.tasks[j].AssigneeIDs = model.StringList(assigneeIds)
			return func() {
				if k := indexOfTask(s.tasks, taskID); k >= 0 {
					s.tasks[k].AssigneeIDs = prev
				}
			}
		},
		call: func() error {
			return s.cli.ReplaceTaskAssignees(taskID, assigneeIds, nil)
		},
	})
}

// CommitShootAssignment 乐观提交拍摄角色席位的分配
func (s *Store) CommitShootAssignment(shootID, serviceName string, assigneeIds []string) error {
	s.mu.Lock()
	if indexOfShoot(s.shoots, shootID) < 0 {
		s.mu.Unlock()
		return ErrShootNotFound
	}
	s.mu.Unlock()

	return s.run(mutation{
		entity: "shoot",
		id:     shootID,
		apply: func() func() {
			j := indexOfShoot(s.shoots, shootID)
			if j < 0 {
				return func() {}
			}
			if s.shoots[j].Services == nil {
				s.shoots[j].Services = map[string]model.WorkUnit{}
			}
			prev, hadUnit := s.shoots[j].Services[serviceName]
			unit := prev
			unit.Assigned = model.StringList(assigneeIds)
			s.shoots[j].Services[serviceName] = unit
			return func() {
				if k := indexOfShoot(s.shoots, shootID); k >= 0 {
					if hadUnit {
						s.shoots[k].Services[serviceName] = prev
					} else {
						delete(s.shoots[k].Services, serviceName)
					}
				}
			}
		},
		call: func() error {
			body := model.AssignmentUpdate{ServiceName: serviceName, AssigneeIDs: assigneeIds}
			if body.AssigneeIDs == nil {
				body.AssigneeIDs = []string{}
			}
			return s.cli.UpdateShootAssignments(shootID, body, nil)
		},
	})
}

func indexOfShoot(shoots []model.Shoot, id string) int {
	for i, sh := range shoots {
		if sh.ID == id {
			return i
		}
	}
	return -1
}
