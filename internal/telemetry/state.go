package telemetry

import (
	"regexp"
	"strconv"
	"sync"
	"time"

	"glove_go/internal/models"
)

// Sub-padrões de telemetria embutidos em qualquer posição de uma linha.
// Cada extração é tentada independentemente: uma única linha pode carregar
// vários canais ao mesmo tempo.
var (
	fusionRe = regexp.MustCompile(`FUSION\s+q:\[([^\]]+)\]`)
	sflpRe   = regexp.MustCompile(`SFLP\s+q:\[([^\]]+)\]`)
	posRe    = regexp.MustCompile(`POS\s*:\[([^\]]+)\]`)
	magRe    = regexp.MustCompile(`M:\[([^\]]+)\]`)
	punchRe  = regexp.MustCompile(`(?i)Punch detected:\s*([0-9.+-]+)\s*m/s\s*hv=([0-9.+-]+)\s*deg\s*vv=([0-9.+-]+)\s*deg`)
	flexRe   = regexp.MustCompile(`(?i)FLEX:\s*Flex value changed:\s*(\d+)\s*->\s*(\d+)\s*\(raw median:\s*(\d+),\s*MIDI:\s*(\d+)\)`)
	battRe   = regexp.MustCompile(`BATT:\s*([0-9.]+)\s*%\s*([0-9.]+)\s*V`)
	rssiRe   = regexp.MustCompile(`(?i)RSSI[:=]\s*(-?\d+)\s*dBm`)
)

// State mantém o último estado conhecido de todos os canais da luva sob um
// único mutex. Escritas acontecem apenas em Ingest; leituras obtêm uma cópia
// consistente via Snapshot, nunca uma leitura rasgada entre campos.
type State struct {
	mu sync.RWMutex

	fusion *models.Quaternion
	sflp   *models.Quaternion

	position   *models.Vector3
	positionTS time.Time

	mag   *models.Vector3
	magTS time.Time

	punch   *models.PunchEvent
	punchTS time.Time

	flex   *models.FlexReading
	flexTS time.Time

	batteryPercent *float64
	batteryVolts   *float64
	batteryTS      time.Time

	rssi   *int
	rssiTS time.Time

	lastUpdate time.Time

	// now é substituível em testes
	now func() time.Time
}

// NewState cria um armazém de telemetria vazio
func NewState() *State {
	return &State{now: time.Now}
}

// Ingest executa todas as extrações de padrão contra a linha e atualiza os
// campos correspondentes. Valores malformados ou não finitos são descartados
// em silêncio e nunca mutam o estado. Uma linha sem nenhum padrão ainda
// avança o timestamp global (comportamento de heartbeat).
func (s *State) Ingest(line string) {
	updated := false

	if m := fusionRe.FindStringSubmatch(line); m != nil {
		if q, ok := ParseQuat(m[1]); ok {
			s.mu.Lock()
			s.fusion = &q
			s.lastUpdate = s.now()
			s.mu.Unlock()
			updated = true
		}
	}

	if m := sflpRe.FindStringSubmatch(line); m != nil {
		if q, ok := ParseQuat(m[1]); ok {
			s.mu.Lock()
			s.sflp = &q
			s.lastUpdate = s.now()
			s.mu.Unlock()
			updated = true
		}
	}

	if m := posRe.FindStringSubmatch(line); m != nil {
		if v, ok := ParseVec3(m[1]); ok {
			s.mu.Lock()
			s.position = &v
			s.positionTS = s.now()
			s.lastUpdate = s.positionTS
			s.mu.Unlock()
			updated = true
		}
	}

	if m := magRe.FindStringSubmatch(line); m != nil {
		if v, ok := ParseVec3(m[1]); ok {
			s.mu.Lock()
			s.mag = &v
			s.magTS = s.now()
			s.lastUpdate = s.magTS
			s.mu.Unlock()
			updated = true
		}
	}

	if m := punchRe.FindStringSubmatch(line); m != nil {
		velocity, okV := parseFiniteFloat(m[1])
		horizontal, okH := parseFiniteFloat(m[2])
		vertical, okZ := parseFiniteFloat(m[3])
		if okV && okH && okZ {
			s.mu.Lock()
			s.punch = &models.PunchEvent{
				Velocity:      velocity,
				HorizontalDeg: horizontal,
				VerticalDeg:   vertical,
			}
			s.punchTS = s.now()
			s.lastUpdate = s.punchTS
			s.mu.Unlock()
			updated = true
		}
	}

	if m := flexRe.FindStringSubmatch(line); m != nil {
		newVal, err1 := strconv.Atoi(m[2])
		rawMedian, err2 := strconv.Atoi(m[3])
		midi, err3 := strconv.Atoi(m[4])
		if err1 == nil && err2 == nil && err3 == nil {
			s.mu.Lock()
			s.flex = &models.FlexReading{
				Value:     newVal,
				RawMedian: rawMedian,
				MIDI:      midi,
			}
			s.flexTS = s.now()
			s.lastUpdate = s.flexTS
			s.mu.Unlock()
			updated = true
		}
	}

	if m := battRe.FindStringSubmatch(line); m != nil {
		percent, okP := parseFiniteFloat(m[1])
		volts, okV := parseFiniteFloat(m[2])
		if okP && okV {
			s.mu.Lock()
			s.batteryPercent = &percent
			s.batteryVolts = &volts
			s.batteryTS = s.now()
			s.lastUpdate = s.batteryTS
			s.mu.Unlock()
			updated = true
		}
	}

	if m := rssiRe.FindStringSubmatch(line); m != nil {
		if dbm, err := strconv.Atoi(m[1]); err == nil {
			s.mu.Lock()
			s.rssi = &dbm
			s.rssiTS = s.now()
			s.lastUpdate = s.rssiTS
			s.mu.Unlock()
			updated = true
		}
	}

	if !updated {
		s.mu.Lock()
		s.lastUpdate = s.now()
		s.mu.Unlock()
	}
}

// Snapshot retorna uma cópia pontual e consistente de todos os campos.
// A orientação ativa é resolvida aqui, não na escrita: fusion vence quando
// presente, senão sflp, senão ausente.
func (s *State) Snapshot() models.TelemetrySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := models.TelemetrySnapshot{
		Fusion:       copyQuat(s.fusion),
		SFLP:         copyQuat(s.sflp),
		Position:     copyVec(s.position),
		PositionTime: s.positionTS,
		Mag:          copyVec(s.mag),
		MagTime:      s.magTS,
		PunchTime:    s.punchTS,
		FlexTime:     s.flexTS,
		BatteryTime:  s.batteryTS,
		RSSITime:     s.rssiTS,
		LastUpdate:   s.lastUpdate,
	}

	if s.punch != nil {
		punch := *s.punch
		snap.Punch = &punch
	}
	if s.flex != nil {
		flex := *s.flex
		snap.Flex = &flex
	}
	if s.batteryPercent != nil {
		percent := *s.batteryPercent
		snap.BatteryPercent = &percent
	}
	if s.batteryVolts != nil {
		volts := *s.batteryVolts
		snap.BatteryVolts = &volts
	}
	if s.rssi != nil {
		rssi := *s.rssi
		snap.RSSI = &rssi
	}

	switch {
	case snap.Fusion != nil:
		active := *snap.Fusion
		snap.Active = &active
		snap.ActiveSource = models.SourceFusion
	case snap.SFLP != nil:
		active := *snap.SFLP
		snap.Active = &active
		snap.ActiveSource = models.SourceSFLP
	}

	return snap
}

func copyQuat(q *models.Quaternion) *models.Quaternion {
	if q == nil {
		return nil
	}
	out := *q
	return &out
}

func copyVec(v *models.Vector3) *models.Vector3 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
