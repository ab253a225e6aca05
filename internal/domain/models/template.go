package models

import (
	"fmt"
	"slices"
	"time"
)

// UserRef - минимальная проекция пользователя
type UserRef struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// Template - опубликованный проект в галерее с реакциями
type Template struct {
	ID           string    `json:"_id"`
	Project      Project   `json:"project"`
	Likes        []UserRef `json:"likes"`
	Dislikes     []UserRef `json:"dislikes"`
	LikeCount    int       `json:"likeCount"`
	DislikeCount int       `json:"dislikeCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (t Template) EntityID() string { return t.ID }

func (t Template) Clone() Template {
	c := t
	c.Project = t.Project.Clone()
	c.Likes = slices.Clone(t.Likes)
	c.Dislikes = slices.Clone(t.Dislikes)
	return c
}

func (t Template) LikedBy(userID string) bool {
	return indexOfUser(t.Likes, userID) != -1
}

func (t Template) DislikedBy(userID string) bool {
	return indexOfUser(t.Dislikes, userID) != -1
}

// ApplyReaction переключает реакцию пользователя локально, повторяя логику сервера.
// Лайк снимает дизлайк и наоборот, повторная реакция того же типа снимает её.
func ApplyReaction(t *Template, user UserRef, kind ReactionKind) {
	own, ownCount := &t.Likes, &t.LikeCount
	other, otherCount := &t.Dislikes, &t.DislikeCount
	if kind == ReactionDislike {
		own, ownCount, other, otherCount = other, otherCount, own, ownCount
	}

	if i := indexOfUser(*own, user.ID); i != -1 {
		*own = slices.Delete(*own, i, i+1)
		*ownCount--
		return
	}

	if i := indexOfUser(*other, user.ID); i != -1 {
		*other = slices.Delete(*other, i, i+1)
		*otherCount--
	}

	*own = append(*own, user)
	*ownCount++
}

// CheckInvariants проверяет взаимоисключаемость реакций и соответствие счетчиков
func (t Template) CheckInvariants() error {
	seen := make(map[string]struct{}, len(t.Likes))
	for _, u := range t.Likes {
		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("template %s: user %s liked twice", t.ID, u.ID)
		}
		seen[u.ID] = struct{}{}
	}

	disliked := make(map[string]struct{}, len(t.Dislikes))
	for _, u := range t.Dislikes {
		if _, both := seen[u.ID]; both {
			return fmt.Errorf("template %s: user %s both liked and disliked", t.ID, u.ID)
		}
		if _, dup := disliked[u.ID]; dup {
			return fmt.Errorf("template %s: user %s disliked twice", t.ID, u.ID)
		}
		disliked[u.ID] = struct{}{}
	}

	if t.LikeCount != len(t.Likes) {
		return fmt.Errorf("template %s: likeCount %d != %d likes", t.ID, t.LikeCount, len(t.Likes))
	}
	if t.DislikeCount != len(t.Dislikes) {
		return fmt.Errorf("template %s: dislikeCount %d != %d dislikes", t.ID, t.DislikeCount, len(t.Dislikes))
	}

	return nil
}

func indexOfUser(users []UserRef, id string) int {
	return slices.IndexFunc(users, func(u UserRef) bool { return u.ID == id })
}
