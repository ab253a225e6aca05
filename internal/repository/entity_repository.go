package repository

import (
	"sync"

	"template_hub/internal/domain/models"
)

type ChangeOp string

const (
	OpReplace ChangeOp = "replace"
	OpUpsert  ChangeOp = "upsert"
	OpRemove  ChangeOp = "remove"
	OpPatch   ChangeOp = "patch"
	OpLoading ChangeOp = "loading"
	OpReset   ChangeOp = "reset"
)

// Change сообщает подписчикам о завершенной мутации
type Change struct {
	Kind models.EntityKind
	Op   ChangeOp
	ID   string
}

// EntityRepository - единственное изменяемое хранилище проектов и шаблонов сессии.
// Каждая операция атомарна по отношению к другим, чтение возвращает копии.
type EntityRepository struct {
	mu        sync.RWMutex
	projects  *Collection[models.Project]
	templates *Collection[models.Template]

	subMu   sync.RWMutex
	nextID  int
	subs    map[int]func(Change)
	held    int
	pending []Change
}

func NewEntityRepository() *EntityRepository {
	return &EntityRepository{
		projects:  newCollection[models.Project](),
		templates: newCollection[models.Template](),
		subs:      make(map[int]func(Change)),
	}
}

// Subscribe регистрирует обработчик изменений, возвращает функцию отписки
func (r *EntityRepository) Subscribe(fn func(Change)) func() {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	id := r.nextID
	r.nextID++
	r.subs[id] = fn

	return func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		delete(r.subs, id)
	}
}

// HoldNotifications откладывает доставку изменений до вызова flush.
// Нужен вызывающим, которые мутируют хранилище под собственной блокировкой:
// flush вызывается после ее снятия, и подписчики могут обращаться к ним обратно.
func (r *EntityRepository) HoldNotifications() (flush func()) {
	r.subMu.Lock()
	r.held++
	r.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.subMu.Lock()
			r.held--
			var pending []Change
			if r.held == 0 {
				pending, r.pending = r.pending, nil
			}
			handlers := r.handlers()
			r.subMu.Unlock()

			for _, ch := range pending {
				for _, fn := range handlers {
					fn(ch)
				}
			}
		})
	}
}

func (r *EntityRepository) notify(ch Change) {
	r.subMu.Lock()
	if r.held > 0 {
		r.pending = append(r.pending, ch)
		r.subMu.Unlock()
		return
	}
	handlers := r.handlers()
	r.subMu.Unlock()

	for _, fn := range handlers {
		fn(ch)
	}
}

// handlers вызывается под subMu
func (r *EntityRepository) handlers() []func(Change) {
	handlers := make([]func(Change), 0, len(r.subs))
	for _, fn := range r.subs {
		handlers = append(handlers, fn)
	}
	return handlers
}

func (r *EntityRepository) ReplaceProjects(items []models.Project, p models.Pagination) {
	r.mu.Lock()
	r.projects.replace(items, p)
	r.mu.Unlock()

	r.notify(Change{Kind: models.KindProject, Op: OpReplace})
}

func (r *EntityRepository) ReplaceTemplates(items []models.Template, p models.Pagination) {
	r.mu.Lock()
	r.templates.replace(items, p)
	r.mu.Unlock()

	r.notify(Change{Kind: models.KindTemplate, Op: OpReplace})
}

func (r *EntityRepository) UpsertProject(item models.Project) {
	r.mu.Lock()
	r.projects.upsert(item)
	r.mu.Unlock()

	r.notify(Change{Kind: models.KindProject, Op: OpUpsert, ID: item.ID})
}

func (r *EntityRepository) UpsertTemplate(item models.Template) {
	r.mu.Lock()
	r.templates.upsert(item)
	r.mu.Unlock()

	r.notify(Change{Kind: models.KindTemplate, Op: OpUpsert, ID: item.ID})
}

// RemoveProject удаляет проект по id, отсутствие записи не ошибка
func (r *EntityRepository) RemoveProject(id string) {
	r.mu.Lock()
	removed := r.projects.remove(id)
	r.mu.Unlock()

	if removed {
		r.notify(Change{Kind: models.KindProject, Op: OpRemove, ID: id})
	}
}

func (r *EntityRepository) RemoveTemplate(id string) {
	r.mu.Lock()
	removed := r.templates.remove(id)
	r.mu.Unlock()

	if removed {
		r.notify(Change{Kind: models.KindTemplate, Op: OpRemove, ID: id})
	}
}

// PatchProject применяет fn к проекту, если он есть на текущей странице
func (r *EntityRepository) PatchProject(id string, fn func(*models.Project)) bool {
	r.mu.Lock()
	patched := r.projects.patch(id, fn)
	r.mu.Unlock()

	if patched {
		r.notify(Change{Kind: models.KindProject, Op: OpPatch, ID: id})
	}
	return patched
}

func (r *EntityRepository) PatchTemplate(id string, fn func(*models.Template)) bool {
	r.mu.Lock()
	patched := r.templates.patch(id, fn)
	r.mu.Unlock()

	if patched {
		r.notify(Change{Kind: models.KindTemplate, Op: OpPatch, ID: id})
	}
	return patched
}

func (r *EntityRepository) SetLoading(kind models.EntityKind, loading bool) {
	r.mu.Lock()
	switch kind {
	case models.KindProject:
		r.projects.loading = loading
	case models.KindTemplate:
		r.templates.loading = loading
	}
	r.mu.Unlock()

	r.notify(Change{Kind: kind, Op: OpLoading})
}

func (r *EntityRepository) Loading(kind models.EntityKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if kind == models.KindProject {
		return r.projects.loading
	}
	return r.templates.loading
}

func (r *EntityRepository) Projects() []models.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.projects.snapshot()
}

func (r *EntityRepository) Templates() []models.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templates.snapshot()
}

func (r *EntityRepository) Project(id string) (models.Project, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.projects.get(id)
}

func (r *EntityRepository) Template(id string) (models.Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templates.get(id)
}

func (r *EntityRepository) ProjectPagination() models.Pagination {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.projects.pagination
}

func (r *EntityRepository) TemplatePagination() models.Pagination {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templates.pagination
}

// Reset возвращает хранилище в начальное состояние (конец сессии)
func (r *EntityRepository) Reset() {
	r.mu.Lock()
	r.projects = newCollection[models.Project]()
	r.templates = newCollection[models.Template]()
	r.mu.Unlock()

	r.notify(Change{Kind: models.KindProject, Op: OpReset})
	r.notify(Change{Kind: models.KindTemplate, Op: OpReset})
}
