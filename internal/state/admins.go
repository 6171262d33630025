package state

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const knownAdminsKey = "admin_known_ids"

// AdminDirectory знает, кто администратор: id и логины из конфига
// плюс id, запомненные при обращении администратора к боту.
type AdminDirectory struct {
	kv        KV
	ids       map[int64]struct{}
	usernames map[string]struct{}
	logger    *zap.Logger
}

func NewAdminDirectory(kv KV, ids []int64, usernames []string, logger *zap.Logger) *AdminDirectory {
	d := &AdminDirectory{
		kv:        kv,
		ids:       make(map[int64]struct{}, len(ids)),
		usernames: make(map[string]struct{}, len(usernames)),
		logger:    logger,
	}
	for _, id := range ids {
		d.ids[id] = struct{}{}
	}
	for _, u := range usernames {
		d.usernames[strings.ToLower(strings.TrimPrefix(u, "@"))] = struct{}{}
	}
	return d
}

func (d *AdminDirectory) IsAdmin(username string, userID int64) bool {
	if _, ok := d.ids[userID]; ok {
		return true
	}
	_, ok := d.usernames[strings.ToLower(strings.TrimPrefix(username, "@"))]
	return ok && username != ""
}

// Remember запоминает id администратора, чтобы слать ему уведомления.
// Ошибки хранилища только логируются.
func (d *AdminDirectory) Remember(ctx context.Context, userID int64) {
	known := d.known(ctx)
	if _, ok := known[userID]; ok {
		return
	}
	known[userID] = struct{}{}
	if err := d.kv.Set(ctx, knownAdminsKey, joinIDs(known)); err != nil {
		d.logger.Warn("Не удалось запомнить администратора", zap.Error(err), zap.Int64("user_id", userID))
	}
}

// All возвращает id всех администраторов по возрастанию
func (d *AdminDirectory) All(ctx context.Context) []int64 {
	all := d.known(ctx)
	for id := range d.ids {
		all[id] = struct{}{}
	}
	out := make([]int64, 0, len(all))
	for id := range all {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (d *AdminDirectory) known(ctx context.Context) map[int64]struct{} {
	ids := make(map[int64]struct{})
	raw, _, err := d.kv.Get(ctx, knownAdminsKey)
	if err != nil {
		d.logger.Warn("Не удалось прочитать список администраторов", zap.Error(err))
		return ids
	}
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err == nil && id > 0 {
			ids[id] = struct{}{}
		}
	}
	return ids
}

func joinIDs(set map[int64]struct{}) string {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}
