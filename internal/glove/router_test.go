package glove

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngester struct {
	lines []string
}

func (f *fakeIngester) Ingest(line string) {
	f.lines = append(f.lines, line)
}

type routerFixture struct {
	telemetry *fakeIngester
	cli       *Queue
	log       *Queue
	router    *Router
}

func newRouterFixture(showAll bool, tags []string) *routerFixture {
	f := &routerFixture{
		telemetry: &fakeIngester{},
		cli:       NewQueue(0),
		log:       NewQueue(0),
	}
	f.router = NewRouter(f.telemetry, f.cli, f.log, NewLogFilter(showAll, tags))
	return f
}

func TestRouterFeedsTelemetryBeforeClassification(t *testing.T) {
	f := newRouterFixture(false, nil)

	f.router.HandleRecord("I (10) FUSION: q:[1,0,0,0]\r\n")

	require.Equal(t, []string{"I (10) FUSION: q:[1,0,0,0]"}, f.telemetry.lines)
}

func TestRouterSuppressedTagsSkipLogQueue(t *testing.T) {
	f := newRouterFixture(true, nil)

	f.router.HandleRecord("I (10) FUSION: q:[1,0,0,0]")
	f.router.HandleRecord("D (11) MOTION: sample")
	f.router.HandleRecord("I (12) FLEX: idle")
	f.router.HandleRecord("I (13) WIFI: connected")

	// Apenas a tag não suprimida chega ao monitor de logs
	assert.Equal(t, []string{"I (13) WIFI: connected"}, f.log.Drain())

	// Com showAll todas as quatro chegam ao CLI
	assert.Len(t, f.cli.Drain(), 4)
}

func TestRouterAllowListRoutesTagToCLI(t *testing.T) {
	f := newRouterFixture(false, []string{"batt"})

	f.router.HandleRecord("I (5) BATT: 85.0 % 3.90 V")
	f.router.HandleRecord("I (6) WIFI: connected")

	cli := f.cli.Drain()
	require.Len(t, cli, 1)
	assert.Equal(t, "I (5) BATT: 85.0 % 3.90 V\n", cli[0])

	// Ambas entram no monitor de logs
	assert.Len(t, f.log.Drain(), 2)
}

func TestRouterPlainTextFlushesWithNewline(t *testing.T) {
	f := newRouterFixture(false, nil)

	f.router.HandleRecord("glove> help")

	cli := f.cli.Drain()
	require.Len(t, cli, 1)
	assert.Equal(t, "glove> help\n", cli[0])
	assert.Empty(t, f.log.Drain())
}

func TestRouterPendingHeldWhenLogEndsRecord(t *testing.T) {
	f := newRouterFixture(false, nil)

	// O eco interativo vem colado a um log: o trecho plain fica pendente
	f.router.HandleRecord("glove> I (20) WIFI: scan done")
	assert.Empty(t, f.cli.Drain())

	// O próximo registro plain descarrega o pendente junto
	f.router.HandleRecord("ok")
	cli := f.cli.Drain()
	require.Len(t, cli, 1)
	assert.Equal(t, "glove> ok\n", cli[0])
}

func TestRouterFragmentFlushesWithoutNewline(t *testing.T) {
	f := newRouterFixture(false, nil)

	f.router.FlushFragment("parcial sem fim")

	cli := f.cli.Drain()
	require.Len(t, cli, 1)
	assert.Equal(t, "parcial sem fim", cli[0])

	// Fragmentos nunca alimentam a telemetria
	assert.Empty(t, f.telemetry.lines)
}

func TestRouterANSIPrefixedHeaderIsLog(t *testing.T) {
	f := newRouterFixture(true, nil)

	colored := "\x1b[0;32mI (42) WIFI: connected\x1b[0m"
	f.router.HandleRecord(colored)

	logs := f.log.Drain()
	require.Len(t, logs, 1)
	// O segmento de log preserva os escapes ANSI originais
	assert.Equal(t, colored, logs[0])
}

func TestRouterFalseHeaderStaysPlain(t *testing.T) {
	f := newRouterFixture(true, nil)

	// Parece um prefixo de log mas não casa com o cabeçalho completo
	f.router.HandleRecord("W (sem timestamp) nada")

	assert.Empty(t, f.log.Drain())
	cli := f.cli.Drain()
	require.Len(t, cli, 1)
	assert.Equal(t, "W (sem timestamp) nada\n", cli[0])
}

func TestRouterEmptyRecordIgnored(t *testing.T) {
	f := newRouterFixture(true, nil)

	f.router.HandleRecord("\r\n")
	f.router.FlushFragment("")

	assert.Empty(t, f.telemetry.lines)
	assert.Empty(t, f.cli.Drain())
	assert.Empty(t, f.log.Drain())
}

func TestQueueDropsOldestOnOverflow(t *testing.T) {
	q := NewQueue(3)
	for _, item := range []string{"a", "b", "c", "d"} {
		q.Push(item)
	}

	assert.Equal(t, []string{"b", "c", "d"}, q.Drain())
	assert.Zero(t, q.Len())
}

func TestLogFilterModes(t *testing.T) {
	assert.True(t, NewLogFilter(true, nil).AllowsTag("QUALQUER"))
	assert.False(t, NewLogFilter(false, nil).AllowsTag("WIFI"))

	f := NewLogFilter(false, []string{" Wifi ", "batt"})
	assert.True(t, f.AllowsTag("WIFI"))
	assert.True(t, f.AllowsTag("batt"))
	assert.False(t, f.AllowsTag("FUSION"))
}
