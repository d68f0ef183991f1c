package utils

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestVec3RotateYaw(t *testing.T) {
	tests := []struct {
		name string
		yaw  float64
		want Vec3
	}{
		{"0度", 0, Vec3{X: 100}},
		{"90度", 90, Vec3{Y: 100}},
		{"180度", 180, Vec3{X: -100}},
		{"-90度", -90, Vec3{Y: -100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Vec3{X: 100, Z: 5}.RotateYaw(tt.yaw)
			if !almostEqual(got.X, tt.want.X) || !almostEqual(got.Y, tt.want.Y) || got.Z != 5 {
				t.Errorf("RotateYaw(%v) = %+v, 期望 %+v (Z=5)", tt.yaw, got, tt.want)
			}
		})
	}
}

func TestInterpTo(t *testing.T) {
	tests := []struct {
		name                   string
		current, target, dt, s float64
		expected               float64
	}{
		{"速度为0直接到达", 0, 10, 0.016, 0, 10},
		{"按比例收敛", 0, 100, 0.01, 30, 30},
		{"步长被限制为1", 0, 100, 1, 30, 100},
		{"已经足够接近", 5, 5.00001, 0.016, 30, 5.00001},
		{"反方向", 100, 0, 0.01, 30, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterpTo(tt.current, tt.target, tt.dt, tt.s)
			if !almostEqual(got, tt.expected) {
				t.Errorf("InterpTo = %v, 期望 %v", got, tt.expected)
			}
		})
	}
}

func TestVec3DistanceAndNormalize(t *testing.T) {
	a := Vec3{X: 3, Y: 4}
	if d := a.Distance(Vec3{}); !almostEqual(d, 5) {
		t.Errorf("Distance = %v, 期望 5", d)
	}
	n := a.Normalize()
	if !almostEqual(n.Length(), 1) {
		t.Errorf("normalized length = %v, 期望 1", n.Length())
	}
	if z := (Vec3{}).Normalize(); z != (Vec3{}) {
		t.Errorf("zero vector should normalize to itself, got %+v", z)
	}
}
