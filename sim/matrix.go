package sim

import (
	"fmt"
	"math"
	"sync"
)

// Matrix is a 2x2 single-qubit unitary, row major.
type Matrix [2][2]Complex

// Identity is returned for gate names the resolver does not know.
var Identity = Matrix{{1, 0}, {0, 1}}

var (
	invSqrt2 = 1 / math.Sqrt2

	matrixH = Matrix{{C(invSqrt2, 0), C(invSqrt2, 0)}, {C(invSqrt2, 0), C(-invSqrt2, 0)}}
	matrixX = Matrix{{0, 1}, {1, 0}}
	matrixY = Matrix{{0, C(0, -1)}, {C(0, 1), 0}}
	matrixZ = Matrix{{1, 0}, {0, -1}}
)

// GateMatrix computes the matrix for a gate name without touching any cache.
//
// H, X, Y and Z ignore angle. RX and RY use the full angle, RZ uses half of it:
//
//	RX(θ) = [[cos θ, -i sin θ], [-i sin θ, cos θ]]
//	RY(θ) = [[cos θ, -sin θ], [sin θ, cos θ]]
//	RZ(θ) = [[e^(-iθ/2), 0], [0, e^(iθ/2)]]
//
// Anything else, including a rotation with no angle, is the identity.
func GateMatrix(name GateType, angle *float64) Matrix {
	switch name {
	case GateH:
		return matrixH
	case GateX:
		return matrixX
	case GateY:
		return matrixY
	case GateZ:
		return matrixZ
	}
	if angle == nil {
		return Identity
	}
	theta := *angle
	c, s := math.Cos(theta), math.Sin(theta)
	switch name {
	case GateRX:
		return Matrix{{C(c, 0), C(0, -s)}, {C(0, -s), C(c, 0)}}
	case GateRY:
		return Matrix{{C(c, 0), C(-s, 0)}, {C(s, 0), C(c, 0)}}
	case GateRZ:
		c2, s2 := math.Cos(theta/2), math.Sin(theta/2)
		return Matrix{{C(c2, -s2), 0}, {0, C(c2, s2)}}
	}
	return Identity
}

// CacheKey is the memoisation key for an angled gate: name, underscore,
// angle with ten decimal places. Negative zero keys as zero.
func CacheKey(name GateType, angle float64) string {
	if angle == 0 {
		angle = 0
	}
	return fmt.Sprintf("%s_%.10f", name, angle)
}

// MatrixCache memoises matrices of angled gates. It is safe for concurrent use
// and never evicts; Clear empties it.
type MatrixCache struct {
	mu sync.RWMutex
	m  map[string]Matrix
}

func NewMatrixCache() *MatrixCache {
	return &MatrixCache{m: make(map[string]Matrix)}
}

// Resolve returns the matrix for name, consulting the cache when angle is set.
func (c *MatrixCache) Resolve(name GateType, angle *float64) Matrix {
	m, _ := c.resolve(name, angle)
	return m
}

// resolve also reports whether the lookup was served from the cache.
func (c *MatrixCache) resolve(name GateType, angle *float64) (Matrix, bool) {
	if angle == nil {
		return GateMatrix(name, nil), false
	}
	key := CacheKey(name, *angle)

	c.mu.RLock()
	m, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		return m, true
	}

	// Two goroutines may both miss and store the same value.
	m = GateMatrix(name, angle)
	c.mu.Lock()
	if c.m == nil {
		c.m = make(map[string]Matrix)
	}
	c.m[key] = m
	c.mu.Unlock()
	return m, false
}

// Len returns the number of memoised matrices.
func (c *MatrixCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Clear drops every entry and returns how many there were.
func (c *MatrixCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.m)
	c.m = make(map[string]Matrix)
	return n
}
