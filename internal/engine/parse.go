package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// maxParseErrorSnippet — сколько символов ответа попадает в текст ошибки.
const maxParseErrorSnippet = 120

// ParseResult разбирает сырой ответ операции как JSON.
//
// Порядок разбора:
//  1. Пустой ответ — пустой объект (операция ничего не вернула).
//  2. Весь текст как JSON.
//  3. Первая сбалансированная подстрока {...} или [...], которая
//     разбирается как JSON (модели часто оборачивают ответ текстом).
//
// Если ничего не подошло — ErrUnparsableResult.
func ParseResult(raw string) (any, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return map[string]any{}, nil
	}

	var value any
	if err := json.Unmarshal([]byte(text), &value); err == nil {
		return value, nil
	}

	if value, ok := ExtractJSON(text); ok {
		return value, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnparsableResult, snippet(text))
}

// ExtractJSON ищет первую сбалансированную JSON-подстроку в тексте.
//
// Перебирает открывающие скобки слева направо; для каждой находит парную
// закрывающую с учётом строк и экранирования и пробует разобрать фрагмент.
func ExtractJSON(text string) (any, bool) {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' && text[start] != '[' {
			continue
		}

		end, ok := matchBracket(text, start)
		if !ok {
			continue
		}

		var value any
		if err := json.Unmarshal([]byte(text[start:end+1]), &value); err == nil {
			return value, true
		}
	}
	return nil, false
}

// matchBracket возвращает индекс скобки, закрывающей text[start].
func matchBracket(text string, start int) (int, bool) {
	stack := make([]byte, 0, 8)
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}

	return 0, false
}

func snippet(text string) string {
	if len(text) <= maxParseErrorSnippet {
		return text
	}
	return text[:maxParseErrorSnippet] + "..."
}
