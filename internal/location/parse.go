package location

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	urlPattern   = regexp.MustCompile(`https?://\S+`)
	plainPattern = regexp.MustCompile(`^\s*(-?\d{1,2}(?:[.]\d+)?)\s*[,; ]\s*(-?\d{1,3}(?:[.]\d+)?)\s*$`)
	// Google Maps: .../@53.2,50.1,15z
	atPattern = regexp.MustCompile(`@(-?\d{1,2}\.\d+),(-?\d{1,3}\.\d+)`)
)

// IsYandexLink - ссылка на Яндекс.Карты, в том числе короткая ya.ru
func IsYandexLink(text string) bool {
	return strings.Contains(text, "yandex.") || strings.Contains(text, "ya.ru")
}

// ExtractURL возвращает первую ссылку из текста
func ExtractURL(text string) string {
	return strings.TrimRight(urlPattern.FindString(text), ".,;)")
}

// ParseMapCoords достаёт координаты из ссылки на карту.
// В Яндексе pt, ll и whatshere[point] идут как "lon,lat", а q и rtext как "lat,lon".
func ParseMapCoords(raw string) (lat, lon float64, ok bool) {
	link := ExtractURL(raw)
	if link == "" {
		return 0, 0, false
	}
	u, err := url.Parse(link)
	if err != nil {
		return 0, 0, false
	}
	q := u.Query()

	for _, key := range []string{"pt", "whatshere[point]", "ll"} {
		if v := q.Get(key); v != "" {
			if lon, lat, ok := pair(firstPoint(v)); ok && valid(lat, lon) {
				return lat, lon, true
			}
		}
	}
	for _, key := range []string{"q", "rtext", "query"} {
		if v := q.Get(key); v != "" {
			if lat, lon, ok := pair(firstPoint(v)); ok && valid(lat, lon) {
				return lat, lon, true
			}
		}
	}
	if m := atPattern.FindStringSubmatch(u.Path); m != nil {
		lat, _ := strconv.ParseFloat(m[1], 64)
		lon, _ := strconv.ParseFloat(m[2], 64)
		if valid(lat, lon) {
			return lat, lon, true
		}
	}
	return 0, 0, false
}

// ParsePlainCoords разбирает текст вида "53.252560, 50.249664"
func ParsePlainCoords(text string) (lat, lon float64, ok bool) {
	m := plainPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(m[1], 64)
	lon, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil || !valid(lat, lon) {
		return 0, 0, false
	}
	return lat, lon, true
}

// AddressFromURL возвращает адрес из параметра text ссылки Яндекс.Карт
func AddressFromURL(raw string) string {
	link := ExtractURL(raw)
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(u.Query().Get("text"))
}

// CityMapURL - ссылка на карту города для кнопки "Открыть Яндекс.Карты"
func CityMapURL(lat, lon float64, zoom int) string {
	if zoom <= 0 {
		zoom = 12
	}
	return "https://yandex.ru/maps/?ll=" +
		strconv.FormatFloat(lon, 'f', 6, 64) + "," + strconv.FormatFloat(lat, 'f', 6, 64) +
		"&z=" + strconv.Itoa(zoom)
}

// firstPoint отрезает остальные точки маршрута и суффиксы меток вида ",pm2rdm"
func firstPoint(v string) string {
	if i := strings.Index(v, "~"); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ",")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, ",")
}

func pair(v string) (float64, float64, bool) {
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	b, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return a, b, true
}

func valid(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
