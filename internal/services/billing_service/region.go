package services

import (
	"os"
	"strings"
	"time"

	"template_hub/internal/domain/models"
)

// LocaleSource отдает сигналы для определения региона
type LocaleSource interface {
	TimeZone() (string, error)
	Language() (string, error)
}

var (
	timeZoneRules = []struct {
		region  models.Region
		markers []string
	}{
		{models.RegionIN, []string{"Asia/Calcutta", "Asia/Kolkata"}},
		{models.RegionGB, []string{"Europe/London"}},
		{models.RegionUS, []string{"America"}},
	}
	languageOrder = []models.Region{models.RegionIN, models.RegionGB, models.RegionUS}
)

// ResolveRegion определяет регион по часовому поясу, затем по языковому тегу.
// Любая ошибка или паника при определении дает US.
func ResolveRegion(src LocaleSource) (region models.Region) {
	defer func() {
		if recover() != nil {
			region = models.RegionUS
		}
	}()

	tz, err := src.TimeZone()
	if err != nil {
		return models.RegionUS
	}
	for _, rule := range timeZoneRules {
		for _, marker := range rule.markers {
			if strings.Contains(tz, marker) {
				return rule.region
			}
		}
	}

	lang, err := src.Language()
	if err != nil {
		return models.RegionUS
	}
	for _, r := range languageOrder {
		if strings.Contains(lang, string(r)) {
			return r
		}
	}

	return models.RegionUS
}

// ResolvePrice возвращает цену для региона или цену US
func ResolvePrice(plan models.Plan, region models.Region) models.Price {
	if p, ok := plan.Prices[region]; ok {
		return p
	}
	return plan.Prices[models.RegionUS]
}

// EnvLocale читает часовой пояс и язык процесса; непустые поля перекрывают окружение.
// Отсутствие сигнала - пустая строка, не ошибка.
type EnvLocale struct {
	TimeZoneOverride string
	LanguageOverride string
}

func (e EnvLocale) TimeZone() (string, error) {
	if e.TimeZoneOverride != "" {
		return e.TimeZoneOverride, nil
	}
	if tz := os.Getenv("TZ"); tz != "" {
		return strings.TrimPrefix(tz, ":"), nil
	}
	if name := time.Local.String(); name != "" && name != "Local" && name != "UTC" {
		return name, nil
	}
	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if i := strings.Index(target, "zoneinfo/"); i != -1 {
			return target[i+len("zoneinfo/"):], nil
		}
	}
	return "", nil
}

func (e EnvLocale) Language() (string, error) {
	if e.LanguageOverride != "" {
		return e.LanguageOverride, nil
	}
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" && v != "C" && v != "POSIX" {
			return v, nil
		}
	}
	return "", nil
}
