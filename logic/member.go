package logic

import (
	"sync"

	"github.com/firsthash/console/logger"
	"github.com/firsthash/console/model"
)

var MemberLogic = new(memberLogic)

type memberLogic struct {
	cache sync.Map // id -> model.Member
}

// Load 全量加载成员缓存，每次页面拉取后调用
func (p *memberLogic) Load(members []model.Member) {
	p.cache.Range(func(k, _ interface{}) bool {
		p.cache.Delete(k)
		return true
	})
	for _, m := range members {
		p.cache.Store(m.ID, m)
	}
}

// FindLocalCache 按id查成员
func (p *memberLogic) FindLocalCache(id string) (model.Member, bool) {
	a, ok := p.cache.Load(id)
	if !ok {
		return model.Member{}, false
	}
	m, ok := a.(model.Member)
	return m, ok
}

// ResolveAssignees id列表映射为成员记录，空列表或全部未命中时返回未分配伪成员
func (p *memberLogic) ResolveAssignees(ids []string) []model.Member {
	resolved := make([]model.Member, 0, len(ids))
	for _, id := range ids {
		if m, ok := p.FindLocalCache(id); ok {
			resolved = append(resolved, m)
		} else {
			logger.Debugf(nil, logger.ASSIGNEERESOLVEWARN, id)
		}
	}
	if len(resolved) == 0 {
		return []model.Member{model.Unassigned()}
	}
	return resolved
}

// Map 成员id索引
func (p *memberLogic) Map() map[string]model.Member {
	result := make(map[string]model.Member)
	p.cache.Range(func(k, v interface{}) bool {
		if m, ok := v.(model.Member); ok {
			result[m.ID] = m
		}
		return true
	})
	return result
}
