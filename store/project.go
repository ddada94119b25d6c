package store

import (
	"github.com/shopspring/decimal"

	"github.com/firsthash/console/logic"
	"github.com/firsthash/console/model"
)

// CreateProject 乐观登记项目，初始状态pending
func (s *Store) CreateProject(form model.ProjectCreate) (string, error) {
	cost := decimal.Zero
	if form.PackageCost != "" {
		parsed, err := decimal.NewFromString(form.PackageCost)
		if err == nil {
			cost = parsed
		}
	}
	temp := tempID()
	var created model.Project
	err := s.run(mutation{
		entity: "project",
		id:     temp,
		apply: func() func() {
			s.projects = append(s.projects, model.Project{
				ID:          temp,
				Name:        form.Name,
				Status:      model.ProjectPending,
				PackageCost: cost,
				Clients:     form.Clients,
			})
			return func() {
				if i := indexOfProject(s.projects, temp); i >= 0 {
					s.projects = append(s.projects[:i], s.projects[i+1:]...)
				}
			}
		},
		call: func() error {
			return s.cli.SaveProject(form, &created)
		},
		reconcile: func() {
			if i := indexOfProject(s.projects, temp); i >= 0 && created.ID != "" {
				s.projects[i] = created
			}
		},
	})
	if err != nil {
		return "", err
	}
	if created.ID != "" {
		return created.ID, nil
	}
	return temp, nil
}

// UpdateProject 乐观更新项目聚合(子文档编辑走整体替换)
func (s *Store) UpdateProject(updated model.Project) error {
	s.mu.Lock()
	if indexOfProject(s.projects, updated.ID) < 0 {
		s.mu.Unlock()
		return ErrProjectNotFound
	}
	s.mu.Unlock()

	return s.run(mutation{
		entity: "project",
		id:     updated.ID,
		apply: func() func() {
			j := indexOfProject(s.projects, updated.ID)
			if j < 0 {
				return func() {}
			}
			prev := s.projects[j]
			s.projects[j] = updated
			return func() {
				if k := indexOfProject(s.projects, updated.ID); k >= 0 {
					s.projects[k] = prev
				}
			}
		},
		call: func() error {
			return s.cli.UpdateProjectById(updated.ID, updated, nil)
		},
	})
}

// DeleteRole 删除角色，全局角色在本地即被拒绝
func (s *Store) DeleteRole(id string) error {
	if err := logic.RoleLogic.CheckDeletable(id); err != nil {
		return err
	}
	return s.run(mutation{
		entity: "role",
		id:     id,
		apply: func() func() {
			idx := -1
			for i, r := range s.roles {
				if r.ID == id {
					idx = i
					break
				}
			}
			if idx < 0 {
				return func() {}
			}
			prev := make([]model.Role, len(s.roles))
			copy(prev, s.roles)
			s.roles = append(s.roles[:idx], s.roles[idx+1:]...)
			return func() {
				s.roles = prev
			}
		},
		call: func() error {
			return s.cli.DelRoleById(id, nil)
		},
	})
}
