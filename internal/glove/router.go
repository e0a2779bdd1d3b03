package glove

import (
	"regexp"
	"strings"
)

// Padrões do formato de log estruturado do firmware:
// <SEVERIDADE> (<timestamp>) <TAG>: <mensagem>, severidade em {E,W,I,D,V},
// opcionalmente precedido por sequências de escape ANSI de cor.
var (
	logLineRe    = regexp.MustCompile(`^([EWIDV]) \((\d+)\) ([^:]+): (.*)$`)
	ansiPrefixRe = regexp.MustCompile(`^(?:\x1b\[[0-9;]*m)+`)
	ansiSuffixRe = regexp.MustCompile(`(?:\x1b\[[0-9;]*m)+$`)
)

// logPrefixes são os inícios possíveis de um cabeçalho de log; a varredura
// usa o primeiro candidato válido (first-match-wins)
var logPrefixes = []string{"E (", "W (", "I (", "D (", "V ("}

// suppressedMonitorTags são tags de telemetria ruidosas, redundantes com a
// extração estruturada de sensores; nunca entram na fila de log
var suppressedMonitorTags = map[string]bool{
	"FUSION": true,
	"MOTION": true,
	"FLEX":   true,
}

type segmentKind int

const (
	segPlain segmentKind = iota
	segLog
)

// segment é uma fatia de um registro classificada como log estruturado ou
// texto livre; vive apenas durante um passo de classificação
type segment struct {
	text string
	kind segmentKind
}

// Ingester recebe cada registro completo para extração de telemetria
type Ingester interface {
	Ingest(line string)
}

// Router classifica cada registro em segmentos log/texto e os publica nas
// filas de saída CLI e de log, aplicando o filtro de tags. Texto livre é
// acumulado num buffer pendente porque pode ser continuação de eco
// interativo ainda não terminado.
//
// Não é seguro para uso concorrente: cada sessão de transporte possui o seu.
type Router struct {
	telemetry Ingester
	cliQueue  *Queue
	logQueue  *Queue
	filter    *LogFilter
	pending   []string
}

// NewRouter cria um roteador ligado ao armazém de telemetria e às filas de saída
func NewRouter(telemetry Ingester, cliQueue, logQueue *Queue, filter *LogFilter) *Router {
	return &Router{
		telemetry: telemetry,
		cliQueue:  cliQueue,
		logQueue:  logQueue,
		filter:    filter,
	}
}

// HandleRecord processa um registro completo vindo do enquadrador.
// A telemetria é sempre alimentada antes da classificação: uma falha de
// classificação nunca bloqueia a extração de sensores.
func (r *Router) HandleRecord(line string) {
	stripped := strings.TrimRight(line, "\r\n")
	if stripped == "" {
		return
	}
	r.telemetry.Ingest(stripped)

	segments := splitRecord(stripped)
	r.emitSegments(segments)
	r.maybeFlushPending(segments, false)
}

// FlushFragment processa um residual descarregado à força pelo enquadrador.
// Fragmentos são apenas classificados e roteados, nunca oferecidos à
// ingestão de telemetria (ver DESIGN.md).
func (r *Router) FlushFragment(fragment string) {
	stripped := strings.TrimRight(fragment, "\r\n")
	if stripped == "" {
		return
	}
	segments := splitRecord(stripped)
	r.emitSegments(segments)
	r.maybeFlushPending(segments, true)
}

// emitSegments publica cada segmento na fila apropriada
func (r *Router) emitSegments(segments []segment) {
	for _, seg := range segments {
		if seg.text == "" {
			continue
		}
		if seg.kind != segLog {
			r.pending = append(r.pending, seg.text)
			continue
		}

		plain := ansiPrefixRe.ReplaceAllString(seg.text, "")
		match := logLineRe.FindStringSubmatch(plain)
		if match == nil {
			r.pending = append(r.pending, seg.text)
			continue
		}

		tag := strings.ToUpper(strings.TrimSpace(match[3]))
		if !suppressedMonitorTags[tag] {
			r.logQueue.Push(seg.text)
		}
		if r.filter.AllowsTag(tag) {
			r.cliQueue.Push(seg.text + "\n")
		}
	}
}

// maybeFlushPending descarrega o buffer pendente para a fila CLI quando o
// último segmento do registro foi texto livre (nada indica que um log o
// encerrou) ou quando o flush é forçado (caso de fragmento, sem newline)
func (r *Router) maybeFlushPending(segments []segment, force bool) {
	if len(r.pending) == 0 {
		return
	}
	lastPlain := len(segments) > 0 && segments[len(segments)-1].kind == segPlain
	if !force && !lastPlain {
		return
	}

	payload := strings.Join(r.pending, "")
	if !force {
		payload += "\n"
	}
	r.cliQueue.Push(payload)
	r.pending = r.pending[:0]
}

// splitRecord divide um registro na lista ordenada de segmentos. Um cabeçalho
// de log reconhecido consome o restante do registro; escapes ANSI
// imediatamente anteriores são absorvidos pelo segmento de log.
func splitRecord(text string) []segment {
	if text == "" {
		return nil
	}

	start, ok := findLogStart(text)
	if !ok {
		return []segment{{text: text, kind: segPlain}}
	}

	var segments []segment
	if start > 0 {
		segments = append(segments, segment{text: text[:start], kind: segPlain})
	}
	return append(segments, segment{text: text[start:], kind: segLog})
}

// findLogStart localiza o início do primeiro cabeçalho de log válido,
// incluindo escapes ANSI imediatamente anteriores. A varredura avança um
// caractere por candidato inválido, preservando first-match-wins.
func findLogStart(text string) (int, bool) {
	scan := 0
	for scan < len(text) {
		idx := indexLogPrefix(text[scan:])
		if idx < 0 {
			return 0, false
		}
		abs := scan + idx
		if !logLineRe.MatchString(text[abs:]) {
			scan = abs + 1
			continue
		}
		// Absorver escapes ANSI que precedem diretamente o cabeçalho
		if loc := ansiSuffixRe.FindStringIndex(text[:abs]); loc != nil {
			abs = loc[0]
		}
		return abs, true
	}
	return 0, false
}

// indexLogPrefix retorna o menor índice de qualquer prefixo de cabeçalho
func indexLogPrefix(text string) int {
	best := -1
	for _, prefix := range logPrefixes {
		if idx := strings.Index(text, prefix); idx >= 0 && (best < 0 || idx < best) {
			best = idx
		}
	}
	return best
}
