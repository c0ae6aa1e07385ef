package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/news-bot/app/i18n"
)

const categoriesPerRow = 2

// MenuKeyboard lists the categories in registry order followed by the
// random, prices, headlines, search and language buttons.
func MenuKeyboard(categories []string, table *i18n.Strings, lang i18n.Language) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	var row []tgbotapi.InlineKeyboardButton
	for _, key := range categories {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(table.CategoryName(key), callbackCategoryPrefix+key))
		if len(row) == categoriesPerRow {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
	}

	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(table.RandomButton, callbackRandom),
			tgbotapi.NewInlineKeyboardButtonData(table.PricesButton, callbackPrices),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(table.GlobalButton, callbackHeadlines),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(table.SearchButton, callbackSearchHelp),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(table.LanguageLabel, callbackLanguagePrefix+lang.Other().String()),
		),
	)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
