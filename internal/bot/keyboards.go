package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ricksxxx/valorant-store-bot/internal/domain/accounts"
)

// Ранги в порядке возрастания, для клавиатур буста.
var ranks = []string{
	"Iron", "Bronze", "Silver", "Gold", "Platinum",
	"Diamond", "Ascendant", "Immortal", "Radiant",
}

func mainMenuKeyboard(admin bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛒 Каталог аккаунтов", "menu:catalog"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Буст рангов", "menu:boost"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 Мои заказы", "menu:orders"),
			tgbotapi.NewInlineKeyboardButtonData("👤 Профиль", "menu:profile"),
		),
	}
	if admin {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Админ-панель", "adm:menu"),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func navKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "nav:menu"),
			tgbotapi.NewInlineKeyboardButtonData("✖️ Отмена", "nav:cancel"),
		),
	)
}

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Отмена", "nav:cancel"),
		),
	)
}

func regionsKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	row := []tgbotapi.InlineKeyboardButton{}
	for _, r := range accounts.Regions() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(string(r), prefix+string(r)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, navKeyboard().InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ranksKeyboard строит клавиатуру рангов; callback несёт индекс ранга.
func ranksKeyboard(prefix string, fromIdx int) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	row := []tgbotapi.InlineKeyboardButton{}
	for i, r := range ranks {
		if i <= fromIdx {
			continue
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(r, fmt.Sprintf("%s%d", prefix, i)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, navKeyboard().InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func adminMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Добавить аккаунт", "adm:acc:add"),
			tgbotapi.NewInlineKeyboardButtonData("📦 Аккаунты", "adm:acc:list:all:0"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏳ Ожидают оплаты", "adm:ord:pending"),
			tgbotapi.NewInlineKeyboardButtonData("💰 Заявлена оплата", "adm:ord:paid"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Выполненные", "adm:ord:completed"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменённые", "adm:ord:cancelled"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", "adm:stats"),
			tgbotapi.NewInlineKeyboardButtonData("👥 Пользователи", "adm:users"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📤 Отчёт по продажам", "adm:export"),
			tgbotapi.NewInlineKeyboardButtonData("♻️ Сброс данных", "adm:reset"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "nav:menu"),
		),
	)
}
