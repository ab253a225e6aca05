package models

import (
	"slices"
	"time"
)

type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusInProgress ProjectStatus = "in-progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

// Valid проверяет, что статус входит в допустимый набор
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusInProgress, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project - проект пользователя со сгенерированными изображениями
type Project struct {
	ID          string        `json:"_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Tags        []string      `json:"tags"`
	Status      ProjectStatus `json:"status"`
	Images      []Image       `json:"images"`
	Published   bool          `json:"publish"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (p Project) EntityID() string { return p.ID }

// Clone возвращает глубокую копию проекта
func (p Project) Clone() Project {
	c := p
	c.Tags = slices.Clone(p.Tags)
	if p.Images != nil {
		c.Images = make([]Image, len(p.Images))
		for i, img := range p.Images {
			c.Images[i] = img.Clone()
		}
	}
	return c
}

// Image неизменяемо после создания и принадлежит проекту
type Image struct {
	ID       string        `json:"_id"`
	URL      string        `json:"url"`
	Metadata ImageMetadata `json:"metadata"`
}

type ImageMetadata struct {
	Type        ComponentType `json:"type"`
	Prompt      string        `json:"prompt"`
	Style       StylePreset   `json:"style"`
	ColorScheme []string      `json:"colorScheme"`
	AspectRatio AspectRatio   `json:"aspectRatio"`
}

func (i Image) Clone() Image {
	c := i
	c.Metadata.ColorScheme = slices.Clone(i.Metadata.ColorScheme)
	return c
}

type ComponentType string

const (
	ComponentHeader      ComponentType = "header"
	ComponentCard        ComponentType = "card"
	ComponentProfile     ComponentType = "profile"
	ComponentBackground  ComponentType = "background"
	ComponentThumbnail   ComponentType = "thumbnail"
	ComponentProduct     ComponentType = "product"
	ComponentIcon        ComponentType = "icon"
	ComponentInfographic ComponentType = "infographic"
	ComponentTestimonial ComponentType = "testimonial"
	ComponentCTA         ComponentType = "cta"
)

type AspectRatio string

const (
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio5x4  AspectRatio = "5:4"
	AspectRatio4x5  AspectRatio = "4:5"
	AspectRatio3x2  AspectRatio = "3:2"
	AspectRatio2x3  AspectRatio = "2:3"
)

type StylePreset string

const (
	StyleMinimalist StylePreset = "minimalist"
	StyleModern     StylePreset = "modern"
	StyleCorporate  StylePreset = "corporate"
	StyleCreative   StylePreset = "creative"
	StyleGeometric  StylePreset = "geometric"
	StyleSketch     StylePreset = "sketch"
)

// DefaultAspectRatio - соотношение сторон по умолчанию для типа компонента
func (t ComponentType) DefaultAspectRatio() AspectRatio {
	switch t {
	case ComponentHeader, ComponentBackground, ComponentInfographic:
		return AspectRatio16x9
	case ComponentCard, ComponentCTA:
		return AspectRatio3x2
	default:
		return AspectRatio1x1
	}
}
