package utils

import (
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02" // Формат даты в callback-данных и черновиках
	humanDate      = "02.01.2006"
	humanDateTime  = "02.01.2006 15:04"
	humanTimeFirst = "15:04 02.01.2006"
)

var markdownV2Replacer = strings.NewReplacer(
	"\\", "\\\\",
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// EscapeMarkdownV2 экранирует спецсимволы MarkdownV2 в пользовательском тексте
func EscapeMarkdownV2(text string) string {
	return markdownV2Replacer.Replace(text)
}

// FormatDate - 10.03.2025
func FormatDate(t time.Time) string {
	return t.Format(humanDate)
}

// FormatDateTime - 10.03.2025 18:00
func FormatDateTime(t time.Time) string {
	return t.Format(humanDateTime)
}

// FormatTimeDate - 18:00 10.03.2025, так время показывается в карточке записи
func FormatTimeDate(t time.Time) string {
	return t.Format(humanTimeFirst)
}

// Handle возвращает @username в нижнем регистре или "@(нет)"
func Handle(username string) string {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return "@(нет)"
	}
	return "@" + strings.ToLower(username)
}
