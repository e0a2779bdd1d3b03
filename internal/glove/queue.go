package glove

import "sync"

// Queue é uma fila FIFO de texto para a troca entre o domínio de I/O e o
// domínio consumidor. Quando um limite é configurado, as entradas mais
// antigas são descartadas para acomodar as novas.
type Queue struct {
	mu    sync.Mutex
	items []string
	max   int
}

// NewQueue cria uma fila com o limite informado (0 ou negativo = sem limite)
func NewQueue(max int) *Queue {
	return &Queue{max: max}
}

// Push adiciona um item ao final da fila
func (q *Queue) Push(item string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, item)
	if q.max > 0 && len(q.items) > q.max {
		drop := len(q.items) - q.max
		q.items = append(q.items[:0], q.items[drop:]...)
	}
}

// Drain remove e retorna todos os itens pendentes, na ordem de chegada
func (q *Queue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	items := q.items
	q.items = nil
	return items
}

// Len retorna o número de itens pendentes
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
