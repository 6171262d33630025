package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"photostudio-bot/internal/config"
	"photostudio-bot/internal/models"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	SourceTelegram = "telegram_location"
	maxRedirects   = 10
)

// Resolver превращает ввод пользователя в координаты съёмки
type Resolver struct {
	client    *http.Client
	geocode   bool
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	logger    *zap.Logger
}

func NewResolver(cfg config.Location, logger *zap.Logger) *Resolver {
	timeout := cfg.Timeout.Std()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
		geocode:   cfg.ReverseGeocode,
		baseURL:   strings.TrimRight(cfg.NominatimURL, "/"),
		userAgent: cfg.UserAgent,
		// Nominatim разрешает не больше одного запроса в секунду
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  logger,
	}
}

// Resolve возвращает nil без ошибки, если распознать место не удалось
func (r *Resolver) Resolve(ctx context.Context, in models.LocationInput) (*models.Location, error) {
	if in.Geo != nil {
		if !valid(in.Geo.Lat, in.Geo.Lon) {
			return nil, nil
		}
		return &models.Location{
			Lat:    in.Geo.Lat,
			Lon:    in.Geo.Lon,
			Text:   fmt.Sprintf("Telegram geo: %.6f,%.6f", in.Geo.Lat, in.Geo.Lon),
			Source: SourceTelegram,
		}, nil
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, nil
	}

	lat, lon, ok := ParseMapCoords(text)
	var address string
	if IsYandexLink(text) {
		address = AddressFromURL(text)
		if !ok {
			resolved, err := r.expand(ctx, ExtractURL(text))
			if err != nil {
				r.logger.Warn("Не удалось раскрыть ссылку на карту", zap.Error(err), zap.String("text", text))
			} else {
				lat, lon, ok = ParseMapCoords(resolved)
				if address == "" {
					address = AddressFromURL(resolved)
				}
				r.logger.Info("Ссылка на карту раскрыта",
					zap.String("original", text),
					zap.String("resolved", resolved),
					zap.Bool("coords", ok),
				)
			}
		}
	}
	if !ok {
		lat, lon, ok = ParsePlainCoords(text)
	}
	if !ok {
		return nil, nil
	}

	if r.geocode && !hasDigit(address) {
		if rev, err := r.reverse(ctx, lat, lon); err != nil {
			r.logger.Warn("Не удалось определить адрес по координатам", zap.Error(err))
		} else if rev != "" {
			address = rev
		}
	}

	return &models.Location{
		Lat:     lat,
		Lon:     lon,
		Text:    fmt.Sprintf("Яндекс.Карты: %.6f,%.6f", lat, lon),
		Source:  text,
		Address: address,
	}, nil
}

// expand проходит по редиректам короткой ссылки и возвращает конечный адрес
func (r *Resolver) expand(ctx context.Context, link string) (string, error) {
	if link == "" {
		return "", errors.New("no link in text")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	return resp.Request.URL.String(), nil
}

type nominatimReply struct {
	DisplayName string `json:"display_name"`
}

func (r *Resolver) reverse(ctx context.Context, lat, lon float64) (string, error) {
	if r.baseURL == "" {
		return "", nil
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%.6f", lat))
	q.Set("lon", fmt.Sprintf("%.6f", lon))
	q.Set("accept-language", "ru")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("nominatim: status %d", resp.StatusCode)
	}

	var body nominatimReply
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("nominatim: %w", err)
	}
	return strings.TrimSpace(body.DisplayName), nil
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
