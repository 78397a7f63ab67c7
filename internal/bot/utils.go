package bot

import (
	"fmt"
	"math"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// formatPrice показывает цену в рублях с примерным эквивалентом в долларах.
func (b *Bot) formatPrice(rub int64) string {
	usd := int64(math.Round(float64(rub) / b.usdRate))
	return fmt.Sprintf("%d ₽ (~%d$)", rub, usd)
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) error {
	answer := tgbotapi.NewCallback(cb.ID, text)
	answer.ShowAlert = alert
	_, err := b.api.Request(answer)
	return err
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	b.send(edit)
}

func (b *Bot) editTextWithKeyboard(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb))
}

func statusRU(s string) string {
	switch s {
	case "pending":
		return "ожидает оплаты"
	case "paid":
		return "оплата заявлена"
	case "completed":
		return "выполнен"
	case "cancelled":
		return "отменён"
	}
	return s
}
