package glove

import "strings"

// DefaultFragmentThreshold limita o buffer residual sem terminador; acima
// disso o residual é descarregado como fragmento para conter o crescimento
const DefaultFragmentThreshold = 256

// Framer reconstrói registros delimitados por quebra de linha a partir de
// pedaços de texto de tamanho arbitrário vindos do transporte.
//
// Não é seguro para uso concorrente: cada sessão de transporte possui o seu.
type Framer struct {
	buf       strings.Builder
	threshold int

	handleRecord   func(string)
	handleFragment func(string)
}

// NewFramer cria um novo enquadrador de linhas. handleRecord recebe cada
// registro completo (sem terminadores); handleFragment recebe residuais
// descarregados à força ou no Flush final.
func NewFramer(threshold int, handleRecord, handleFragment func(string)) *Framer {
	if threshold <= 0 {
		threshold = DefaultFragmentThreshold
	}
	return &Framer{
		threshold:      threshold,
		handleRecord:   handleRecord,
		handleFragment: handleFragment,
	}
}

// Feed acrescenta um pedaço de texto ao buffer e emite todos os registros
// completos encontrados, na ordem dos bytes de entrada. Aceita qualquer
// convenção de quebra de linha; o par \r\n consome ambos os bytes.
func (f *Framer) Feed(chunk string) {
	if chunk == "" {
		return
	}
	f.buf.WriteString(chunk)

	buffer := f.buf.String()
	for {
		idx := strings.IndexAny(buffer, "\r\n")
		if idx < 0 {
			break
		}
		consume := idx + 1
		if buffer[idx] == '\r' && consume < len(buffer) && buffer[consume] == '\n' {
			consume++
		}
		record := buffer[:idx]
		buffer = buffer[consume:]
		f.handleRecord(record)
	}

	f.buf.Reset()
	if len(buffer) > f.threshold {
		// Residual sem terminador excedeu o limite: descarregar como fragmento
		f.handleFragment(buffer)
		return
	}
	f.buf.WriteString(buffer)
}

// Flush emite o residual pendente (se houver) como fragmento final.
// Chamado uma única vez no encerramento do transporte.
func (f *Framer) Flush() {
	if f.buf.Len() == 0 {
		return
	}
	residual := f.buf.String()
	f.buf.Reset()
	f.handleFragment(residual)
}
