package logic

import (
	"sync"

	"github.com/firsthash/console/model"
)

var ProjectLogic = new(projectLogic)

type projectLogic struct {
	cache sync.Map // id -> model.Project
}

// Load 全量加载项目缓存
func (p *projectLogic) Load(projects []model.Project) {
	p.cache.Range(func(k, _ interface{}) bool {
		p.cache.Delete(k)
		return true
	})
	for _, pr := range projects {
		p.cache.Store(pr.ID, pr)
	}
}

// FindLocalCache 按id查项目
func (p *projectLogic) FindLocalCache(id string) (model.Project, bool) {
	a, ok := p.cache.Load(id)
	if !ok {
		return model.Project{}, false
	}
	pr, ok := a.(model.Project)
	return pr, ok
}

// DeliverableMap 交付物id索引
func (p *projectLogic) DeliverableMap(items []model.Deliverable) map[string]model.Deliverable {
	result := make(map[string]model.Deliverable, len(items))
	for _, d := range items {
		result[d.ID] = d
	}
	return result
}
