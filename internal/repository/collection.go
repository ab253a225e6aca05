package repository

import "template_hub/internal/domain/models"

// Entity - запись, которую хранит Collection
type Entity[T any] interface {
	EntityID() string
	Clone() T
}

// Collection - упорядоченный список записей текущей страницы и ее пагинация.
// Не потокобезопасна, синхронизацию обеспечивает EntityRepository.
type Collection[T Entity[T]] struct {
	items      []T
	pagination models.Pagination
	loading    bool
}

func newCollection[T Entity[T]]() *Collection[T] {
	return &Collection[T]{
		items:      []T{},
		pagination: models.InitialPagination(),
		loading:    true,
	}
}

func (c *Collection[T]) replace(items []T, p models.Pagination) {
	next := make([]T, len(items))
	for i, item := range items {
		next[i] = item.Clone()
	}
	c.items = next
	c.pagination = p
	c.loading = false
}

// upsert вставляет запись в начало, если ее нет, иначе заменяет на месте
func (c *Collection[T]) upsert(item T) {
	if i := c.index(item.EntityID()); i != -1 {
		c.items[i] = item.Clone()
		return
	}
	c.items = append([]T{item.Clone()}, c.items...)
}

func (c *Collection[T]) remove(id string) bool {
	i := c.index(id)
	if i == -1 {
		return false
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	return true
}

// patch применяет fn к копии записи и сохраняет результат
func (c *Collection[T]) patch(id string, fn func(*T)) bool {
	i := c.index(id)
	if i == -1 {
		return false
	}
	next := c.items[i].Clone()
	fn(&next)
	c.items[i] = next
	return true
}

func (c *Collection[T]) get(id string) (T, bool) {
	if i := c.index(id); i != -1 {
		return c.items[i].Clone(), true
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) snapshot() []T {
	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = item.Clone()
	}
	return out
}

func (c *Collection[T]) index(id string) int {
	for i, item := range c.items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}
