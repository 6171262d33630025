package state

import (
	"context"
	"encoding/json"

	"photostudio-bot/internal/config"
	"photostudio-bot/internal/models"

	"go.uber.org/zap"
)

const categoriesKey = "portfolio_categories"

// DefaultCategories - список категорий съёмки, если в настройках ничего нет
var DefaultCategories = []models.Category{
	{Label: "👨‍👩‍👧‍👦 Семейная", Slug: "family"},
	{Label: "💕 Love Story", Slug: "love_story"},
	{Label: "👤 Индивидуальная", Slug: "personal"},
	{Label: "🎉 Репортажная (банкеты, мероприятия)", Slug: "reportage"},
	{Label: "💍 Свадебная", Slug: "wedding"},
	{Label: "💋 Lingerie (будуарная)", Slug: "lingerie"},
	{Label: "👶 Детская (школы/садики)", Slug: "children"},
	{Label: "👩‍👶 Мама с ребёнком", Slug: "mom_child"},
	{Label: "✝️ Крещение", Slug: "baptism"},
	{Label: "⛪ Венчание", Slug: "wedding_church"},
}

// CategoryStore читает список категорий из настройки portfolio_categories.
// Пустое или испорченное значение заменяется списком по умолчанию и сохраняется.
type CategoryStore struct {
	kv       KV
	defaults []models.Category
	logger   *zap.Logger
}

func NewCategoryStore(kv KV, items []config.CategoryItem, logger *zap.Logger) *CategoryStore {
	defaults := DefaultCategories
	if len(items) > 0 {
		defaults = make([]models.Category, 0, len(items))
		for _, it := range items {
			defaults = append(defaults, models.Category{Label: it.Text, Slug: it.Slug})
		}
	}
	return &CategoryStore{kv: kv, defaults: defaults, logger: logger}
}

func (s *CategoryStore) Categories(ctx context.Context) ([]models.Category, error) {
	raw, ok, err := s.kv.Get(ctx, categoriesKey)
	if err != nil {
		return nil, err
	}
	if ok && raw != "" {
		var cats []models.Category
		if err := json.Unmarshal([]byte(raw), &cats); err == nil && len(cats) > 0 {
			return cats, nil
		}
		s.logger.Warn("Список категорий в настройках испорчен, восстанавливаем по умолчанию")
	}

	if err := s.Set(ctx, s.defaults); err != nil {
		return nil, err
	}
	return s.defaults, nil
}

// Set заменяет список категорий целиком
func (s *CategoryStore) Set(ctx context.Context, cats []models.Category) error {
	raw, err := json.Marshal(cats)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, categoriesKey, string(raw))
}
