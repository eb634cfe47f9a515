package repo

import "errors"

// Общие ошибки репозиториев.
var (
	// ErrNotFound — запись не найдена в БД.
	ErrNotFound = errors.New("not found")

	// ErrMissingID — у записи нет идентификатора.
	ErrMissingID = errors.New("record has no id")
)
