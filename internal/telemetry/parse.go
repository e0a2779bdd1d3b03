package telemetry

import (
	"math"
	"strconv"
	"strings"

	"glove_go/internal/models"
)

// ParseQuat interpreta uma lista "w,x,y,z" como quaternião unitário.
// Rejeita listas malformadas, componentes não finitos e norma zero;
// o resultado é sempre normalizado.
func ParseQuat(s string) (models.Quaternion, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return models.Quaternion{}, false
	}

	var q [4]float64
	for i, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || !isFinite(val) {
			return models.Quaternion{}, false
		}
		q[i] = val
	}

	norm := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if norm == 0 || !isFinite(norm) {
		return models.Quaternion{}, false
	}

	return models.Quaternion{
		W: q[0] / norm,
		X: q[1] / norm,
		Y: q[2] / norm,
		Z: q[3] / norm,
	}, true
}

// ParseVec3 interpreta uma lista "x,y,z" como vetor de três componentes.
// Rejeita listas malformadas e componentes não finitos.
func ParseVec3(s string) (models.Vector3, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return models.Vector3{}, false
	}

	var v [3]float64
	for i, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || !isFinite(val) {
			return models.Vector3{}, false
		}
		v[i] = val
	}

	return models.Vector3{X: v[0], Y: v[1], Z: v[2]}, true
}

// parseFiniteFloat converte uma string para float64 finito
func parseFiniteFloat(s string) (float64, bool) {
	val, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !isFinite(val) {
		return 0, false
	}
	return val, true
}

// isFinite verifica se o valor não é NaN nem infinito
func isFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}
