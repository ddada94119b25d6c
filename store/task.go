package store

import (
	"io"

	"github.com/firsthash/console/errors"
	"github.com/firsthash/console/logger"
	"github.com/firsthash/console/model"
)

var (
	// ErrAdminOnly 定稿切换仅限管理员
	ErrAdminOnly = errors.New("仅管理员可以操作定稿状态")
	// ErrToggleUnavailable 当前状态下没有定稿切换动作
	ErrToggleUnavailable = errors.New("当前状态不支持定稿切换")
	// ErrTaskNotFound 任务不存在
	ErrTaskNotFound = errors.New("任务不存在")
	// ErrBadStatus 非法任务状态
	ErrBadStatus = errors.New("非法的任务状态")
)

// CreateTask 乐观创建任务：先以临时id入列表，成功后换成后端id
func (s *Store) CreateTask(form model.TaskCreate) (string, error) {
	if form.Status == "" {
		form.Status = model.TaskToDo
	}
	if !model.ValidStatus(form.Status) {
		return "", ErrBadStatus
	}
	temp := tempID()
	var created model.Task
	err := s.run(mutation{
		entity: "task",
		id:     temp,
		apply: func() func() {
			t := model.Task{
				ID:            temp,
				Title:         form.Title,
				Status:        form.Status,
				DueDate:       form.DueDate,
				ParentTaskID:  form.ParentTaskID,
				ProjectID:     form.ProjectID,
				DeliverableID: form.DeliverableID,
				AssigneeIDs:   model.StringList(form.AssigneeIDs),
				VoiceNoteURL:  form.VoiceNoteURL,
			}
			s.tasks = append(s.tasks, t)
			return func() {
				if i := indexOfTask(s.tasks, temp); i >= 0 {
					s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
				}
			}
		},
		call: func() error {
			return s.cli.SaveTask(form, &created)
		},
		reconcile: func() {
			if i := indexOfTask(s.tasks, temp); i >= 0 {
				if created.ID != "" {
					s.tasks[i] = created
				}
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

// UpdateTask 乐观更新任务字段(标题/状态/截止日/负责人等)
func (s *Store) UpdateTask(updated model.Task) error {
	if !model.ValidStatus(updated.Status) {
		return ErrBadStatus
	}
	s.mu.Lock()
	if indexOfTask(s.tasks, updated.ID) < 0 {
		s.mu.Unlock()
		return ErrTaskNotFound
	}
	s.mu.Unlock()

	return s.run(mutation{
		entity: "task",
		id:     updated.ID,
		apply: func() func() {
			j := indexOfTask(s.tasks, updated.ID)
			if j < 0 {
				return func() {}
			}
			prev := s.tasks[j]
			s.tasks[j] = updated
			return func() {
				if k := indexOfTask(s.tasks, updated.ID); k >= 0 {
					s.tasks[k] = prev
				}
			}
		},
		call: func() error {
			return s.cli.UpdateTaskById(updated.ID, updated, nil)
		},
	})
}

// DeleteTask 乐观删除任务并本地级联删除子树(后端假定同样级联)
func (s *Store) DeleteTask(id string) error {
	return s.run(mutation{
		entity: "task",
		id:     id,
		apply: func() func() {
			prev := make([]model.Task, len(s.tasks))
			copy(prev, s.tasks)
			s.removeSubtree(id)
			return func() {
				s.tasks = prev
			}
		},
		call: func() error {
			return s.cli.DelTaskById(id, nil)
		},
	})
}

// removeSubtree 摘除任务及其全部后代，返回被摘除的任务(按原顺序)
func (s *Store) removeSubtree(id string) []model.Task {
	doomed := map[string]struct{}{id: {}}
	// 自上而下传播，直到没有新命中
	for {
		grew := false
		for _, t := range s.tasks {
			if _, ok := doomed[t.ID]; ok {
				continue
			}
			if t.ParentTaskID == "" {
				continue
			}
			if _, ok := doomed[t.ParentTaskID]; ok {
				doomed[t.ID] = struct{}{}
				grew = true
			}
		}
		if !grew {
			break
		}
	}
	kept := make([]model.Task, 0, len(s.tasks))
	removed := make([]model.Task, 0, len(doomed))
	for _, t := range s.tasks {
		if _, ok := doomed[t.ID]; ok {
			removed = append(removed, t)
		} else {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	return removed
}

// CanToggleFinalize 定稿切换入口是否可见
// 限制模式下completed不再提供切换；宽松模式(AllowRefinalize)下completed可以重新定稿
func (s *Store) CanToggleFinalize(actor Actor, task model.Task) bool {
	if actor.Role != RoleAdmin {
		return false
	}
	switch task.Status {
	case model.TaskFinalize:
		return true
	case model.TaskCompleted:
		return s.opts.AllowRefinalize
	}
	return false
}

// ToggleFinalize 管理员定稿切换：finalize→completed；宽松模式下completed→finalize
func (s *Store) ToggleFinalize(actor Actor, taskID string) error {
	if actor.Role != RoleAdmin {
		return ErrAdminOnly
	}
	s.mu.Lock()
	i := indexOfTask(s.tasks, taskID)
	if i < 0 {
		s.mu.Unlock()
		return ErrTaskNotFound
	}
	task := s.tasks[i]
	s.mu.Unlock()

	var next string
	switch task.Status {
	case model.TaskFinalize:
		next = model.TaskCompleted
	case model.TaskCompleted:
		if !s.opts.AllowRefinalize {
			return ErrToggleUnavailable
		}
		next = model.TaskFinalize
	default:
		return ErrToggleUnavailable
	}
	task.Status = next
	return s.UpdateTask(task)
}

// AttachVoiceNote 上传语音备注并挂到任务上
// 上传本身不走乐观路径(二进制无法回滚)，成功拿到URL后按普通字段更新处理
func (s *Store) AttachVoiceNote(taskID string, file io.Reader, filename string) error {
	var uploaded model.Upload
	if err := s.cli.UploadFile(file, filename, "voice_note", &uploaded); err != nil {
		logger.Errorf(map[string]interface{}{"task": taskID, "file": filename}, logger.UPLOADERROR, err.Error())
		return err
	}
	s.mu.Lock()
	i := indexOfTask(s.tasks, taskID)
	if i < 0 {
		s.mu.Unlock()
		return ErrTaskNotFound
	}
	task := s.tasks[i]
	s.mu.Unlock()
	task.VoiceNoteURL = uploaded.URL
	return s.UpdateTask(task)
}
