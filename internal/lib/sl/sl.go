// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель — единообразное формирование структурированных полей лога:
// ошибок и заведомо чувствительных значений.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Masked возвращает slog.Attr с заглушкой вместо значения. Используется
// для полей, которые нельзя выводить в лог в открытом виде: номера карт,
// CVC и прочих платёжных реквизитов.
func Masked(key string) slog.Attr {
	return slog.Attr{
		Key:   key,
		Value: slog.StringValue("***"),
	}
}
