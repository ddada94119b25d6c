package logic

import (
	"sync"

	"github.com/firsthash/console/errors"
	"github.com/firsthash/console/model"
)

var RoleLogic = new(roleLogic)

// ErrRoleUndeletable 全局角色不可删除
var ErrRoleUndeletable = errors.New("全局角色不可删除")

type roleLogic struct {
	cache sync.Map // id -> model.Role
}

// Load 全量加载角色缓存
func (p *roleLogic) Load(roles []model.Role) {
	p.cache.Range(func(k, _ interface{}) bool {
		p.cache.Delete(k)
		return true
	})
	for _, r := range roles {
		p.cache.Store(r.ID, r)
	}
}

// FindLocalCache 按id查角色
func (p *roleLogic) FindLocalCache(id string) (model.Role, bool) {
	a, ok := p.cache.Load(id)
	if !ok {
		return model.Role{}, false
	}
	r, ok := a.(model.Role)
	return r, ok
}

// CheckDeletable 删除前校验，全局公司角色拒绝删除
func (p *roleLogic) CheckDeletable(id string) error {
	r, ok := p.FindLocalCache(id)
	if !ok {
		return errors.New("角色不存在")
	}
	if !r.Deletable() {
		return ErrRoleUndeletable
	}
	return nil
}
