package orchestrator

import (
	"errors"

	"github.com/shaiso/Enricher/internal/catalog"
)

// Ошибки оркестратора. Все они терминальные: стадии не запускаются
// (или не продолжаются) и вызывающий получает ошибку вместо Result.
var (
	// ErrMissingID — в запросе нет идентификатора записи.
	ErrMissingID = errors.New("missing id")

	// ErrNotFound — основная запись не найдена.
	ErrNotFound = errors.New("record not found")

	// ErrEmptyInput — у записи нет исходного текста.
	ErrEmptyInput = errors.New("record has no text")

	// ErrOperationNotResolved — операции пайплайна отсутствуют в каталоге.
	ErrOperationNotResolved = catalog.ErrOperationNotResolved

	// ErrFetchFailed — хранилище не смогло прочитать запись.
	ErrFetchFailed = errors.New("record fetch failed")

	// ErrPersistFailed — хранилище не смогло сохранить запись.
	ErrPersistFailed = errors.New("record persist failed")

	// ErrUnknownPipeline — пайплайн с таким именем не настроен.
	ErrUnknownPipeline = errors.New("unknown pipeline")
)

// IsRecordError проверяет, что ошибка вызвана самой записью или запросом,
// а не инфраструктурой. Повторный запуск такой записи не поможет.
func IsRecordError(err error) bool {
	return errors.Is(err, ErrMissingID) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrEmptyInput)
}
