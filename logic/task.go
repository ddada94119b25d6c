package logic

import (
	"sync"

	"github.com/firsthash/console/model"
)

var TaskLogic = new(taskLogic)

type taskLogic struct {
	cache sync.Map // id -> model.Task
}

// Load 全量加载任务缓存
func (p *taskLogic) Load(tasks []model.Task) {
	p.cache.Range(func(k, _ interface{}) bool {
		p.cache.Delete(k)
		return true
	})
	for _, t := range tasks {
		p.cache.Store(t.ID, t)
	}
}

// FindLocalCache 按id查任务
func (p *taskLogic) FindLocalCache(id string) (model.Task, bool) {
	a, ok := p.cache.Load(id)
	if !ok {
		return model.Task{}, false
	}
	t, ok := a.(model.Task)
	return t, ok
}

// Map 任务id索引
func (p *taskLogic) Map(tasks []model.Task) map[string]model.Task {
	result := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		result[t.ID] = t
	}
	return result
}

// ChildrenIndex 两趟O(n)建立父子索引，父id不在集合内的按根处理
func (p *taskLogic) ChildrenIndex(tasks []model.Task) (roots []string, children map[string][]string) {
	children = make(map[string][]string, len(tasks))
	index := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		index[t.ID] = struct{}{}
	}
	for _, t := range tasks {
		if t.ParentTaskID == "" {
			roots = append(roots, t.ID)
			continue
		}
		if _, ok := index[t.ParentTaskID]; ok {
			children[t.ParentTaskID] = append(children[t.ParentTaskID], t.ID)
		} else {
			// 孤儿按根处理
			roots = append(roots, t.ID)
		}
	}
	return roots, children
}

// Assignees 任务负责人解析，依赖成员缓存
func (p *taskLogic) Assignees(t model.Task) []model.Member {
	return MemberLogic.ResolveAssignees(t.AssigneeIDs)
}
