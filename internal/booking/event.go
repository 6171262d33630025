package booking

import "photostudio-bot/internal/models"

type Action string

const (
	ActionStart          Action = "start"
	ActionBackToDate     Action = "back_to_date"
	ActionPickDate       Action = "pick_date"
	ActionPickHour       Action = "pick_hour"
	ActionTakenHour      Action = "taken_hour"
	ActionPickCategory   Action = "pick_category"
	ActionSupplyLocation Action = "supply_location"
	ActionSkipLocation   Action = "skip_location"
	ActionConfirm        Action = "confirm"
	ActionCancel         Action = "cancel"
	ActionReschedule     Action = "reschedule"
	ActionCancelBooking  Action = "cancel_booking"
	ActionStatus         Action = "status"
	ActionMenu           Action = "menu"
)

// Stage - шаг диалога, в котором оказался пользователь после события
type Stage string

const (
	StageIdle              Stage = "idle"
	StageSelectingDate     Stage = "selecting_date"
	StageSelectingHour     Stage = "selecting_hour"
	StageSelectingCategory Stage = "selecting_category"
	StageAwaitingLocation  Stage = "awaiting_location"
	StageConfirming        Stage = "confirming"
	StageCommitted         Stage = "committed"
	StageCancelled         Stage = "cancelled"
)

// Event - действие пользователя в диалоге записи
type Event struct {
	UserID   int64
	ChatID   int64
	Username string
	Action   Action

	Date      string // YYYY-MM-DD
	Hour      int
	Category  string // slug
	BookingID int64
	Location  *models.LocationInput
}

// Choice - вариант ответа; транспорт сам решает, как его нарисовать
type Choice struct {
	Label  string
	Action Action
	URL    string // Кнопка-ссылка, Action пустой

	Date      string
	Hour      int
	Category  string
	BookingID int64
}

// Reply - что показать пользователю после события
type Reply struct {
	Stage     Stage
	Text      string     // Пустой текст - ничего не перерисовывать
	Choices   [][]Choice // Строки вариантов
	Notice    string     // Короткое всплывающее сообщение
	ShowMenu  bool       // После завершения диалога показать главное меню
	Ignored   bool       // Событие не относится к диалогу записи
	BookingID int64      // Запись, созданная или изменённая событием
}
