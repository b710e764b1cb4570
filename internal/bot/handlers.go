package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pricetag-studio/internal/ingest"
	"pricetag-studio/internal/pricing"
	"pricetag-studio/internal/render"
	"pricetag-studio/internal/storage"
)

const previewLimit = 10

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	msg := tgbotapi.NewMessage(chatID, `Привет! 👋

Я собираю ценники для печати. Добавьте товары вручную или пришлите Excel-файл со столбцами «Название» и «Цена», а я посчитаю скидки и подготовлю страницу для печати.`)
	msg.ReplyMarkup = b.createMainMenuKeyboard()
	b.sendMessage(msg)

	if err := b.state.SetStep(ctx, chatID, StepMainMenu); err != nil {
		b.logger.Error("Failed to set state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) handleHelp(chatID int64) {
	helpText := `Доступные команды:
/start - Начать работу с ботом
/help - Показать эту справку

Пришлите .xlsx файл, чтобы загрузить товары таблицей. Столбцы «Дизайн» и «Скидка» управляют оформлением и скидкой каждой строки.`

	b.sendMessage(tgbotapi.NewMessage(chatID, helpText))
}

func (b *Bot) showMainMenu(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = b.createMainMenuKeyboard()
	b.sendMessage(msg)

	if err := b.state.SetStep(ctx, chatID, StepMainMenu); err != nil {
		b.logger.Error("Failed to set state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) handleMainMenu(ctx context.Context, chatID int64, text string) {
	switch text {
	case ButtonAddItem:
		msg := tgbotapi.NewMessage(chatID, "Введите название товара:")
		msg.ReplyMarkup = b.createCancelKeyboard()
		b.sendMessage(msg)
		b.setStep(ctx, chatID, StepItemName)

	case ButtonList:
		b.listItems(ctx, chatID)

	case ButtonEdit:
		session := b.session(ctx, chatID)
		if len(session.Items) == 0 {
			b.showMainMenu(ctx, chatID, "Список пуст, менять нечего.")
			return
		}
		b.listItems(ctx, chatID)
		msg := tgbotapi.NewMessage(chatID, "Введите номер товара, у которого меняем цену:")
		msg.ReplyMarkup = b.createCancelKeyboard()
		b.sendMessage(msg)
		b.setStep(ctx, chatID, StepEditItem)

	case ButtonDelete:
		session := b.session(ctx, chatID)
		if len(session.Items) == 0 {
			b.showMainMenu(ctx, chatID, "Список пуст, удалять нечего.")
			return
		}
		b.listItems(ctx, chatID)
		msg := tgbotapi.NewMessage(chatID, "Введите номер товара для удаления:")
		msg.ReplyMarkup = b.createCancelKeyboard()
		b.sendMessage(msg)
		b.setStep(ctx, chatID, StepDeleteItem)

	case ButtonPreview:
		b.sendPreview(ctx, chatID)

	case ButtonPDF:
		b.sendPDF(ctx, chatID)

	case ButtonExport:
		b.sendExport(ctx, chatID)

	case ButtonSettings:
		b.showSettings(ctx, chatID)

	case ButtonClear:
		session := b.session(ctx, chatID)
		session.Clear()
		if !b.saveSession(ctx, chatID, session) {
			return
		}
		b.showMainMenu(ctx, chatID, "🧹 Все товары удалены.")

	default:
		b.sendError(chatID, "Я не понимаю эту команду. Пожалуйста, используйте меню.")
	}
}

func (b *Bot) handleItemName(ctx context.Context, chatID int64, text string) {
	text = strings.TrimSpace(text)
	if text == ButtonCancel {
		b.showMainMenu(ctx, chatID, "Добавление отменено.")
		return
	}
	if text == "" {
		b.sendError(chatID, "Название не может быть пустым. Введите название товара:")
		return
	}

	if err := b.state.SetPendingLabel(ctx, chatID, text); err != nil {
		b.logger.Error("Failed to save pending item",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Название: %s\nТеперь введите цену:", text))
	msg.ReplyMarkup = b.createCancelKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleItemPrice(ctx context.Context, chatID int64, text string) {
	if text == ButtonCancel {
		b.showMainMenu(ctx, chatID, "Добавление отменено.")
		return
	}

	price, err := parseAmount(text)
	if err != nil || price <= 0 {
		b.sendError(chatID, "Некорректная цена. Введите число больше нуля, например 1299 или 1299,50:")
		return
	}

	state, err := b.state.Get(ctx, chatID)
	if err != nil || state.PendingLabel == "" {
		b.showMainMenu(ctx, chatID, "Не нашёл название товара, начните добавление заново.")
		return
	}

	session := b.session(ctx, chatID)
	item := session.AddItem(state.PendingLabel, price)
	if !b.saveSession(ctx, chatID, session) {
		return
	}

	b.showMainMenu(ctx, chatID, fmt.Sprintf("✅ Добавлен товар №%d: %s — %s ₽",
		item.ID, item.Label, pricing.FormatPrice(item.Price)))
}

func (b *Bot) handleEditItem(ctx context.Context, chatID int64, text string) {
	if text == ButtonCancel {
		b.showMainMenu(ctx, chatID, "Изменение отменено.")
		return
	}

	id, err := parseItemNumber(text)
	if err != nil {
		b.sendError(chatID, "Введите номер товара из списка:")
		return
	}

	session := b.session(ctx, chatID)
	item, ok := session.Item(id)
	if !ok {
		b.sendError(chatID, fmt.Sprintf("Товар №%d не найден. Введите номер из списка:", id))
		return
	}

	if err := b.state.SetPendingItem(ctx, chatID, id); err != nil {
		b.logger.Error("Failed to save pending item",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("%s — сейчас %s ₽. Введите новую цену:",
		item.Label, pricing.FormatPrice(item.Price)))
	msg.ReplyMarkup = b.createCancelKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleEditPrice(ctx context.Context, chatID int64, text string) {
	if text == ButtonCancel {
		b.showMainMenu(ctx, chatID, "Изменение отменено.")
		return
	}

	price, err := parseAmount(text)
	if err != nil || price <= 0 {
		b.sendError(chatID, "Некорректная цена. Введите число больше нуля:")
		return
	}

	state, err := b.state.Get(ctx, chatID)
	if err != nil || state.PendingItemID == 0 {
		b.showMainMenu(ctx, chatID, "Не нашёл выбранный товар, начните заново.")
		return
	}

	session := b.session(ctx, chatID)
	if !session.UpdateItem(state.PendingItemID, pricing.ItemPatch{Price: &price}) {
		b.showMainMenu(ctx, chatID, fmt.Sprintf("Товар №%d уже удалён.", state.PendingItemID))
		return
	}
	if !b.saveSession(ctx, chatID, session) {
		return
	}

	b.showMainMenu(ctx, chatID, fmt.Sprintf("✅ Цена товара №%d теперь %s ₽",
		state.PendingItemID, pricing.FormatPrice(price)))
}

func (b *Bot) handleDeleteItem(ctx context.Context, chatID int64, text string) {
	if text == ButtonCancel {
		b.showMainMenu(ctx, chatID, "Удаление отменено.")
		return
	}

	id, err := parseItemNumber(text)
	if err != nil {
		b.sendError(chatID, "Введите номер товара из списка:")
		return
	}

	session := b.session(ctx, chatID)
	if !session.DeleteItem(id) {
		b.sendError(chatID, fmt.Sprintf("Товар №%d не найден. Введите номер из списка:", id))
		return
	}
	if !b.saveSession(ctx, chatID, session) {
		return
	}
	b.showMainMenu(ctx, chatID, fmt.Sprintf("🗑 Товар №%d удалён.", id))
}

func (b *Bot) listItems(ctx context.Context, chatID int64) {
	session := b.session(ctx, chatID)
	if len(session.Items) == 0 {
		b.showMainMenu(ctx, chatID, "Список пуст. Добавьте товары вручную или пришлите Excel-файл.")
		return
	}

	params := session.RenderAll(b.themes)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Товары (%d):\n\n", len(session.Items)))
	for i, item := range session.Items {
		sb.WriteString(fmt.Sprintf("№%d %s — %s ₽", item.ID, item.Label, pricing.FormatPrice(item.Price)))
		if p := params[i]; p.ShowDiscount {
			sb.WriteString(fmt.Sprintf(" (со скидкой %s ₽)", p.DiscountPrice))
		} else if p.IsMultiTier {
			sb.WriteString(fmt.Sprintf(" (за 2: %s, от 3: %s)", p.Tiers.For2, p.Tiers.From3))
		}
		sb.WriteString("\n")
	}
	b.sendMessage(tgbotapi.NewMessage(chatID, sb.String()))
}

// sendPreview sends one tag preview link per item, capped so a large
// import does not flood the chat.
func (b *Bot) sendPreview(ctx context.Context, chatID int64) {
	session := b.session(ctx, chatID)
	if len(session.Items) == 0 {
		b.showMainMenu(ctx, chatID, "Список пуст, предпросмотр недоступен.")
		return
	}

	params := session.RenderAll(b.themes)

	var sb strings.Builder
	sb.WriteString("👀 Предпросмотр ценников:\n\n")
	for i, p := range params {
		if i == previewLimit {
			sb.WriteString(fmt.Sprintf("… и ещё %d. Полная страница: %s\n", len(params)-previewLimit, b.printURL(chatID)))
			break
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", p.DisplayLabel, render.PreviewURL(b.cfg.PublicBaseURL, p)))
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.DisableWebPagePreview = true
	b.sendMessage(msg)
}

func (b *Bot) sendPDF(ctx context.Context, chatID int64) {
	if b.chrome == nil {
		b.sendError(chatID, "Генерация PDF не настроена на этом сервере.")
		return
	}

	session := b.session(ctx, chatID)
	if len(session.Items) == 0 {
		b.showMainMenu(ctx, chatID, "Список пуст, печатать нечего.")
		return
	}

	b.sendMessage(tgbotapi.NewMessage(chatID, "⏳ Готовлю PDF..."))

	pdf, err := b.chrome.GeneratePDF(ctx, b.printURL(chatID))
	if err != nil {
		b.logger.Error("PDF generation failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Не удалось сгенерировать PDF, попробуйте позже.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "pricetags.pdf",
		Bytes: pdf,
	})
	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Error("Failed to send PDF",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) sendExport(ctx context.Context, chatID int64) {
	session := b.session(ctx, chatID)
	if len(session.Items) == 0 {
		b.showMainMenu(ctx, chatID, "Список пуст, выгружать нечего.")
		return
	}
	if session.Dirty() {
		session.Recompute()
	}

	data, err := storage.ExportItemsToExcel(session)
	if err != nil {
		b.logger.Error("Excel export failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Не удалось выгрузить таблицу.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "pricetags.xlsx",
		Bytes: data,
	})
	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Error("Failed to send workbook",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// fetchDocument downloads a Telegram file, treating any non-200 answer
// as a failed download so an error page is never parsed as a workbook.
func fetchDocument(url string) (io.ReadCloser, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// handleDocument imports an uploaded .xlsx as the new item list.
func (b *Bot) handleDocument(ctx context.Context, chatID int64, doc *tgbotapi.Document) {
	if !strings.HasSuffix(strings.ToLower(doc.FileName), ".xlsx") {
		b.sendError(chatID, "Поддерживаются только файлы .xlsx")
		return
	}

	url, err := b.bot.GetFileDirectURL(doc.FileID)
	if err != nil {
		b.logger.Error("Failed to resolve file URL",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Не удалось скачать файл, попробуйте ещё раз.")
		return
	}

	body, err := fetchDocument(url)
	if err != nil {
		b.logger.Error("Failed to download file",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Не удалось скачать файл, попробуйте ещё раз.")
		return
	}
	defer body.Close()

	res, err := ingest.ParseWorkbook(body)
	if err != nil {
		b.sendError(chatID, "Не удалось прочитать таблицу. Проверьте, что это файл Excel.")
		return
	}

	session := b.session(ctx, chatID)
	session.ApplyImport(res.Items, res.HasTableDesigns, res.HasTableDiscounts)
	if !b.saveSession(ctx, chatID, session) {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📥 Загружено товаров: %d\n", len(res.Items)))
	if res.HasTableDesigns {
		sb.WriteString("В таблице есть столбец «Дизайн» — выберите тему «Из таблицы» в настройках.\n")
	}
	if res.HasTableDiscounts {
		sb.WriteString("В таблице есть столбец «Скидка» — она управляет скидкой каждой строки.\n")
	}
	for _, skip := range res.Skipped {
		sb.WriteString(fmt.Sprintf("⚠️ Строка %d пропущена: %s\n", skip.Row, skip.Reason))
	}
	b.showMainMenu(ctx, chatID, sb.String())
}

func (b *Bot) showSettings(ctx context.Context, chatID int64) {
	session := b.session(ctx, chatID)
	s := session.Settings

	discount := "выключены"
	if s.Design {
		discount = "включены"
	}
	labels := "выключены"
	if s.ShowThemeLabels {
		labels = "включены"
	}
	cut := s.CuttingLineColor
	if cut == pricing.CutLineAuto || cut == "" {
		cut = "авто"
	}
	text := s.DiscountText
	if text == "" {
		text = "не задан"
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"⚙️ Настройки\n\nТема: %s\nСкидки: %s\nСумма скидки: %s ₽\nПотолок скидки: %.0f%%\nНадписи NEW/SALE: %s\nТекст под скидкой: %s\nЛиния отреза: %s",
		themeLabel(s.DesignType), discount, pricing.FormatPrice(s.DiscountAmount),
		s.MaxDiscountPercent, labels, text, cut))
	msg.ReplyMarkup = b.createSettingsKeyboard()
	b.sendMessage(msg)
	b.setStep(ctx, chatID, StepSettingsMenu)
}

func (b *Bot) handleSettingsMenu(ctx context.Context, chatID int64, text string) {
	session := b.session(ctx, chatID)

	switch text {
	case ButtonTheme:
		msg := tgbotapi.NewMessage(chatID, "Выберите тему оформления:")
		msg.ReplyMarkup = b.createThemeKeyboard(session.Settings.HasTableDesigns)
		b.sendMessage(msg)
		b.setStep(ctx, chatID, StepThemeSelection)

	case ButtonToggleDiscount:
		next := session.Settings
		next.Design = !next.Design
		session.SetSettings(next)
		if b.saveSession(ctx, chatID, session) {
			b.showSettings(ctx, chatID)
		}

	case ButtonToggleLabels:
		next := session.Settings
		next.ShowThemeLabels = !next.ShowThemeLabels
		session.SetSettings(next)
		if b.saveSession(ctx, chatID, session) {
			b.showSettings(ctx, chatID)
		}

	case ButtonDiscountAmount:
		msg := tgbotapi.NewMessage(chatID, "Введите сумму скидки в рублях:")
		msg.ReplyMarkup = b.createCancelKeyboard()
		b.sendMessage(msg)
		b.setStep(ctx, chatID, StepDiscountAmount)

	case ButtonDiscountLimit:
		msg := tgbotapi.NewMessage(chatID, "Введите максимальный процент скидки (0–100):")
		msg.ReplyMarkup = b.createCancelKeyboard()
		b.sendMessage(msg)
		b.setStep(ctx, chatID, StepDiscountLimit)

	case ButtonDiscountText:
		msg := tgbotapi.NewMessage(chatID, "Введите текст, который печатается под ценой со скидкой (до двух строк). Отправьте «-», чтобы убрать текст:")
		msg.ReplyMarkup = b.createCancelKeyboard()
		b.sendMessage(msg)
		b.setStep(ctx, chatID, StepDiscountText)

	case ButtonCutLine:
		msg := tgbotapi.NewMessage(chatID, "Выберите цвет линии отреза или отправьте свой в формате #rrggbb:")
		msg.ReplyMarkup = b.createCutLineKeyboard()
		b.sendMessage(msg)
		b.setStep(ctx, chatID, StepCutLineColor)

	case ButtonResetSettings:
		session.ResetSettings()
		if b.saveSession(ctx, chatID, session) {
			b.showSettings(ctx, chatID)
		}

	case ButtonBack:
		b.showMainMenu(ctx, chatID, "🏠 Главное меню")

	default:
		b.sendError(chatID, "Пожалуйста, используйте кнопки меню.")
	}
}

func (b *Bot) handleThemeSelection(ctx context.Context, chatID int64, text string) {
	if text == ButtonCancel {
		b.showSettings(ctx, chatID)
		return
	}

	key, ok := themeKeyByLabel(text)
	if !ok {
		b.sendError(chatID, "Выберите тему с клавиатуры.")
		return
	}

	session := b.session(ctx, chatID)
	if key == pricing.DesignTypeTable && !session.Settings.HasTableDesigns {
		b.sendError(chatID, "В загруженной таблице нет столбца «Дизайн».")
		return
	}

	next := session.Settings
	next.DesignType = key
	session.SetSettings(next)
	if b.saveSession(ctx, chatID, session) {
		b.showSettings(ctx, chatID)
	}
}

func (b *Bot) handleDiscountAmount(ctx context.Context, chatID int64, text string) {
	if text == ButtonCancel {
		b.showSettings(ctx, chatID)
		return
	}

	amount, err := parseAmount(text)
	if err != nil || amount < 0 {
		b.sendError(chatID, "Введите неотрицательное число, например 500:")
		return
	}

	session := b.session(ctx, chatID)
	next := session.Settings
	next.DiscountAmount = amount
	session.SetSettings(next)
	if b.saveSession(ctx, chatID, session) {
		b.showSettings(ctx, chatID)
	}
}

func (b *Bot) handleDiscountLimit(ctx context.Context, chatID int64, text string) {
	if text == ButtonCancel {
		b.showSettings(ctx, chatID)
		return
	}

	percent, err := parseAmount(text)
	if err != nil || percent < 0 || percent > 100 {
		b.sendError(chatID, "Введите число от 0 до 100:")
		return
	}

	session := b.session(ctx, chatID)
	next := session.Settings
	next.MaxDiscountPercent = percent
	session.SetSettings(next)
	if b.saveSession(ctx, chatID, session) {
		b.showSettings(ctx, chatID)
	}
}

func (b *Bot) handleDiscountText(ctx context.Context, chatID int64, text string) {
	if text == ButtonCancel {
		b.showSettings(ctx, chatID)
		return
	}
	if text == "-" {
		text = ""
	}

	session := b.session(ctx, chatID)
	next := session.Settings
	next.DiscountText = text
	session.SetSettings(next)
	if b.saveSession(ctx, chatID, session) {
		b.showSettings(ctx, chatID)
	}
}

func (b *Bot) handleCutLineColor(ctx context.Context, chatID int64, text string) {
	var color string
	switch text {
	case ButtonCancel:
		b.showSettings(ctx, chatID)
		return
	case ButtonCutLineAuto:
		color = pricing.CutLineAuto
	case "Чёрная":
		color = "#000000"
	case "Белая":
		color = "#ffffff"
	default:
		if !isHexColor(text) {
			b.sendError(chatID, "Введите цвет в формате #rrggbb, например #ff0000:")
			return
		}
		color = strings.ToLower(text)
	}

	session := b.session(ctx, chatID)
	next := session.Settings
	next.CuttingLineColor = color
	session.SetSettings(next)
	if b.saveSession(ctx, chatID, session) {
		b.showSettings(ctx, chatID)
	}
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) {
	if !b.isAdmin(chatID) {
		b.sendError(chatID, "Команда доступна только администраторам.")
		return
	}

	stats, err := b.sessions.GetStats(ctx)
	if err != nil {
		b.logger.Error("Failed to get stats", zap.Error(err))
		b.sendError(chatID, "Не удалось получить статистику.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		"📊 Статистика\n\nВсего сессий: %d\nАктивны сегодня: %d\nИз бота: %d\nИз веба: %d\n",
		stats.TotalSessions, stats.TodaySessions, stats.BotSessions, stats.WebSessions))

	if recent, err := b.sessions.ListSessions(ctx, 5); err == nil && len(recent) > 0 {
		sb.WriteString("\nПоследняя активность:\n")
		for _, info := range recent {
			sb.WriteString(fmt.Sprintf("%s (%s) — %s\n",
				info.ID, info.Kind, info.UpdatedAt.Format("02.01 15:04")))
		}
	}

	b.sendMessage(tgbotapi.NewMessage(chatID, sb.String()))
}

func (b *Bot) setStep(ctx context.Context, chatID int64, step string) {
	if err := b.state.SetStep(ctx, chatID, step); err != nil {
		b.logger.Error("Failed to set state",
			zap.Int64("chat_id", chatID),
			zap.String("step", step),
			zap.Error(err))
	}
}

func (b *Bot) printURL(chatID int64) string {
	return strings.TrimRight(b.cfg.PublicBaseURL, "/") + "/print/" + sessionID(chatID)
}
