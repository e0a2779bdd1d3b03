package glove

import "strings"

// LogFilter decide quais linhas de log estruturado chegam ao console CLI.
// Construído uma única vez a partir da configuração; seguro para leitura
// concorrente por ser imutável após a criação.
type LogFilter struct {
	showAll bool
	allowed map[string]bool // nil quando nenhuma allow-list foi configurada
}

// NewLogFilter cria um filtro a partir da flag "exibir todos" e da
// allow-list de tags (case-insensitive)
func NewLogFilter(showAll bool, tags []string) *LogFilter {
	f := &LogFilter{showAll: showAll}
	if len(tags) > 0 {
		f.allowed = make(map[string]bool, len(tags))
		for _, tag := range tags {
			if tag = strings.TrimSpace(tag); tag != "" {
				f.allowed[strings.ToUpper(tag)] = true
			}
		}
	}
	return f
}

// AllowsTag informa se um segmento de log com a tag dada passa para o CLI.
// Texto sem cabeçalho reconhecido sempre passa (não chega a consultar tag).
func (f *LogFilter) AllowsTag(tag string) bool {
	if f.showAll {
		return true
	}
	if f.allowed == nil {
		return false
	}
	return f.allowed[strings.ToUpper(strings.TrimSpace(tag))]
}
