package models

// GeoPoint - координаты из нативного вложения Telegram
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Message - входящее сообщение пользователя
type Message struct {
	ChatID   int64
	UserID   int64
	Text     string
	Username string
	FullName string
	Location *GeoPoint // Заполнено, если пользователь отправил геолокацию
}

type CallbackQuery struct {
	ID        string // ID callback запроса
	UserID    int64  // ID пользователя, который нажал на кнопку
	UserName  string // Имя пользователя
	UserLogin string // Логин пользователя в Telegram
	MessageID int    // ID сообщения, в котором была нажата кнопка
	ChatID    int64  // ID чата, где был нажат callback
	Data      string // Данные callback запроса (например, "bk_h:2025-03-10:18")
}

// LocationInput - сырой ввод локации: текст/ссылка или нативная геопозиция
type LocationInput struct {
	Text string
	Geo  *GeoPoint
}
