// Package orderid отвечает за формат человекочитаемых номеров заказов.
//
// Номер имеет вид ORD-<год>-<номер>, где номер — монотонно растущее
// целое в рамках календарного года, дополненное нулями минимум до трёх
// знаков. Резервирование самого номера выполняет хранилище атомарным
// инкрементом; здесь только формат и разбор.
package orderid

import (
	"fmt"
	"strconv"
	"strings"
)

const prefix = "ORD"

// Format собирает номер заказа из года и порядкового номера.
func Format(year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, year, seq)
}

// Parse разбирает номер заказа и возвращает год и порядковый номер.
func Parse(orderID string) (int, int, error) {
	const op = "orderid.Parse"

	parts := strings.Split(orderID, "-")
	if len(parts) != 3 || parts[0] != prefix {
		return 0, 0, fmt.Errorf("%s: malformed order id %q", op, orderID)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	if seq < 1 {
		return 0, 0, fmt.Errorf("%s: sequence must be positive, got %d", op, seq)
	}
	return year, seq, nil
}
