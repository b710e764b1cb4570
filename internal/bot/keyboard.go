package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

const (
	ButtonAddItem  = "➕ Добавить товар"
	ButtonList     = "📋 Список товаров"
	ButtonEdit     = "✏️ Изменить цену"
	ButtonDelete   = "🗑 Удалить товар"
	ButtonPreview  = "👀 Предпросмотр"
	ButtonPDF      = "🖨 Скачать PDF"
	ButtonExport   = "📤 Выгрузить Excel"
	ButtonSettings = "⚙️ Настройки"
	ButtonClear    = "🧹 Очистить всё"

	ButtonTheme          = "🎨 Тема"
	ButtonToggleDiscount = "💸 Скидки вкл/выкл"
	ButtonToggleLabels   = "🏷 Надписи вкл/выкл"
	ButtonDiscountAmount = "Сумма скидки"
	ButtonDiscountLimit  = "Потолок скидки, %"
	ButtonDiscountText   = "Текст под скидкой"
	ButtonCutLine        = "Линия отреза"
	ButtonResetSettings  = "↩️ Сбросить настройки"
	ButtonBack           = "⬅️ Назад"
	ButtonCancel         = "Отмена"

	ButtonThemeFromTable = "Из таблицы"
	ButtonCutLineAuto    = "Авто"
)

// themeButtons maps the Russian keyboard labels to theme keys. The rows
// are grouped so the three behavioral themes come first.
var themeButtons = []struct {
	Label string
	Key   string
}{
	{"Стандарт", "default"},
	{"Новинка", "new"},
	{"Распродажа", "sale"},
	{"Белый", "white"},
	{"Чёрный", "black"},
	{"Красный", "red"},
	{"Оранжевый", "orange"},
	{"Жёлтый", "yellow"},
	{"Зелёный", "green"},
	{"Мятный", "mint"},
	{"Бирюзовый", "teal"},
	{"Синий", "blue"},
	{"Индиго", "indigo"},
	{"Фиолетовый", "purple"},
	{"Розовый", "pink"},
	{"Коричневый", "brown"},
	{"Серый", "gray"},
}

func (b *Bot) createMainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonAddItem),
			tgbotapi.NewKeyboardButton(ButtonList),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonPreview),
			tgbotapi.NewKeyboardButton(ButtonPDF),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonEdit),
			tgbotapi.NewKeyboardButton(ButtonDelete),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonExport),
			tgbotapi.NewKeyboardButton(ButtonSettings),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonClear),
		),
	)
}

func (b *Bot) createSettingsKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonTheme),
			tgbotapi.NewKeyboardButton(ButtonToggleDiscount),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonDiscountAmount),
			tgbotapi.NewKeyboardButton(ButtonDiscountLimit),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonDiscountText),
			tgbotapi.NewKeyboardButton(ButtonCutLine),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonToggleLabels),
			tgbotapi.NewKeyboardButton(ButtonResetSettings),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonBack),
		),
	)
}

func (b *Bot) createThemeKeyboard(hasTableDesigns bool) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton

	if hasTableDesigns {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonThemeFromTable),
		))
	}

	var row []tgbotapi.KeyboardButton
	for _, tb := range themeButtons {
		row = append(row, tgbotapi.NewKeyboardButton(tb.Label))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(ButtonCancel),
	))

	return tgbotapi.NewReplyKeyboard(rows...)
}

func (b *Bot) createCancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonCancel),
		),
	)
}

func (b *Bot) createCutLineKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonCutLineAuto),
			tgbotapi.NewKeyboardButton("Чёрная"),
			tgbotapi.NewKeyboardButton("Белая"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonCancel),
		),
	)
}
