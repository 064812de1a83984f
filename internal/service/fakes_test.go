// fakes_test.go — in-memory реализации репозиториев для unit-тестов
// сервисного слоя. Семантика повторяет SQL-реализации: add-to-set,
// идемпотентное мягкое удаление, ErrNotFound/ErrConflict.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/avkuznetsov/eventdesk/internal/domain/model"
	"github.com/avkuznetsov/eventdesk/internal/repository"
)

// --- fakeUserRepo ---

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return fmt.Errorf("%w: username уже занят", repository.ErrConflict)
		}
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) ExistsByID(_ context.Context, id string) (bool, error) {
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) ExistsByRole(_ context.Context, role string) (bool, error) {
	for _, u := range r.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

// --- fakeEventRepo ---

type fakeEventRepo struct {
	events map[string]*model.Event
	order  []string
	// appendErr подменяет результат AppendTaskID для имитации
	// рассинхронизации между проверкой события и пополнением.
	appendErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*model.Event)}
}

func cloneEvent(e *model.Event) *model.Event {
	cp := *e
	cp.TaskIDs = append([]string(nil), e.TaskIDs...)
	return &cp
}

func (r *fakeEventRepo) Create(_ context.Context, e *model.Event) error {
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	r.events[e.ID] = cloneEvent(e)
	r.order = append(r.order, e.ID)
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneEvent(e), nil
}

func (r *fakeEventRepo) matches(e *model.Event, f repository.EventFilter) bool {
	if !f.IncludeDeleted && e.Deleted {
		return false
	}
	if f.SupervisorID != nil && e.SupervisorID != *f.SupervisorID {
		return false
	}
	if f.EventManagerID != nil && e.EventManagerID != *f.EventManagerID {
		return false
	}
	if f.ClientID != nil && e.ClientID != *f.ClientID {
		return false
	}
	return true
}

func (r *fakeEventRepo) List(_ context.Context, f repository.EventFilter, limit, offset int) ([]*model.Event, error) {
	var result []*model.Event
	skipped := 0
	for _, id := range r.order {
		e := r.events[id]
		if !r.matches(e, f) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if len(result) == limit {
			break
		}
		result = append(result, cloneEvent(e))
	}
	return result, nil
}

func (r *fakeEventRepo) Count(_ context.Context, f repository.EventFilter) (int, error) {
	count := 0
	for _, e := range r.events {
		if r.matches(e, f) {
			count++
		}
	}
	return count, nil
}

func (r *fakeEventRepo) Update(_ context.Context, e *model.Event) error {
	stored, ok := r.events[e.ID]
	if !ok {
		return repository.ErrNotFound
	}
	e.TaskIDs = append([]string(nil), stored.TaskIDs...)
	e.Deleted = stored.Deleted
	e.UpdatedAt = time.Now().UTC()
	r.events[e.ID] = cloneEvent(e)
	return nil
}

func (r *fakeEventRepo) SoftDelete(_ context.Context, id string) (*model.Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !e.Deleted {
		e.Deleted = true
		e.UpdatedAt = time.Now().UTC()
	}
	return cloneEvent(e), nil
}

func (r *fakeEventRepo) AppendTaskID(_ context.Context, eventID, taskID string) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	e, ok := r.events[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, id := range e.TaskIDs {
		if id == taskID {
			return nil
		}
	}
	e.TaskIDs = append(e.TaskIDs, taskID)
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// --- fakeTaskRepo ---

type fakeTaskRepo struct {
	tasks map[string]*model.Task
	order []string
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*model.Task)}
}

func (r *fakeTaskRepo) Create(_ context.Context, t *model.Task) error {
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	r.tasks[t.ID] = &cp
	r.order = append(r.order, t.ID)
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*model.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) ListByEvent(_ context.Context, eventID string, includeDeleted bool) ([]*model.Task, error) {
	var result []*model.Task
	for _, id := range r.order {
		t := r.tasks[id]
		if t.EventID != eventID {
			continue
		}
		if t.Deleted && !includeDeleted {
			continue
		}
		cp := *t
		result = append(result, &cp)
	}
	return result, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t *model.Task) error {
	stored, ok := r.tasks[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	t.EventID = stored.EventID
	t.Deleted = stored.Deleted
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) SoftDelete(_ context.Context, id string) (*model.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !t.Deleted {
		t.Deleted = true
		t.UpdatedAt = time.Now().UTC()
	}
	cp := *t
	return &cp, nil
}
