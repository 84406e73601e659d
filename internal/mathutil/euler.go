package mathutil

import "math"

// RotationOrder is the axis sequence used to decompose a rotation into
// Euler angles. XYZ means X is applied first: R = Rz·Ry·Rx.
type RotationOrder int

const (
	OrderXYZ RotationOrder = iota
	OrderYZX
	OrderZXY
	OrderXZY
	OrderYXZ
	OrderZYX
)

var orderNames = [...]string{"xyz", "yzx", "zxy", "xzy", "yxz", "zyx"}

func (o RotationOrder) String() string {
	if o < 0 || int(o) >= len(orderNames) {
		return "xyz"
	}
	return orderNames[o]
}

// ParseOrder returns the rotation order for its lowercase name.
// Unknown names fall back to zyx, matching the host's behavior.
func ParseOrder(s string) RotationOrder {
	for i, n := range orderNames {
		if n == s {
			return RotationOrder(i)
		}
	}
	return OrderZYX
}

// Euler is a rotation expressed as three angles (radians) applied in Order.
type Euler struct {
	X, Y, Z float64
	Order   RotationOrder
}

// Angles returns the three angles in axis order (x, y, z).
func (e Euler) Angles() [3]float64 {
	return [3]float64{e.X, e.Y, e.Z}
}

// ToMat3 composes the rotation matrix. The first axis of the order is the
// innermost factor: order xyz gives Rz(z)·Ry(y)·Rx(x).
func (e Euler) ToMat3() Mat3 {
	rx, ry, rz := RotX(e.X), RotY(e.Y), RotZ(e.Z)
	switch e.Order {
	case OrderXYZ:
		return Mat3Mul(rz, Mat3Mul(ry, rx))
	case OrderYZX:
		return Mat3Mul(rx, Mat3Mul(rz, ry))
	case OrderZXY:
		return Mat3Mul(ry, Mat3Mul(rx, rz))
	case OrderXZY:
		return Mat3Mul(ry, Mat3Mul(rz, rx))
	case OrderYXZ:
		return Mat3Mul(rz, Mat3Mul(rx, ry))
	case OrderZYX:
		return Mat3Mul(rx, Mat3Mul(ry, rz))
	}
	return Mat3Identity()
}

// Reorder re-expresses the same physical rotation under a different order.
func (e Euler) Reorder(order RotationOrder) Euler {
	if order == e.Order {
		return e
	}
	return EulerFromMat3(e.ToMat3(), order)
}

const gimbalEps = 1e-9

// EulerFromMat3 extracts Euler angles under the given order from a pure
// rotation matrix. At the order's singularity the third-applied angle is
// pinned to zero.
func EulerFromMat3(m Mat3, order RotationOrder) Euler {
	e := Euler{Order: order}
	switch order {
	case OrderXYZ:
		sy := clamp1(-m[6])
		e.Y = math.Asin(sy)
		if math.Abs(sy) < 1-gimbalEps {
			e.X = math.Atan2(m[7], m[8])
			e.Z = math.Atan2(m[3], m[0])
		} else {
			e.X = math.Atan2(sy*m[1], sy*m[2])
		}
	case OrderYZX:
		sz := clamp1(-m[1])
		e.Z = math.Asin(sz)
		if math.Abs(sz) < 1-gimbalEps {
			e.Y = math.Atan2(m[2], m[0])
			e.X = math.Atan2(m[7], m[4])
		} else {
			e.Y = math.Atan2(sz*m[5], sz*m[3])
		}
	case OrderZXY:
		sx := clamp1(-m[5])
		e.X = math.Asin(sx)
		if math.Abs(sx) < 1-gimbalEps {
			e.Z = math.Atan2(m[3], m[4])
			e.Y = math.Atan2(m[2], m[8])
		} else {
			e.Z = math.Atan2(sx*m[6], sx*m[7])
		}
	case OrderXZY:
		sz := clamp1(m[3])
		e.Z = math.Asin(sz)
		if math.Abs(sz) < 1-gimbalEps {
			e.X = math.Atan2(-m[5], m[4])
			e.Y = math.Atan2(-m[6], m[0])
		} else {
			e.X = math.Atan2(m[7], m[8])
		}
	case OrderYXZ:
		sx := clamp1(m[7])
		e.X = math.Asin(sx)
		if math.Abs(sx) < 1-gimbalEps {
			e.Y = math.Atan2(-m[6], m[8])
			e.Z = math.Atan2(-m[1], m[4])
		} else {
			e.Y = math.Atan2(m[2], m[0])
		}
	case OrderZYX:
		sy := clamp1(m[2])
		e.Y = math.Asin(sy)
		if math.Abs(sy) < 1-gimbalEps {
			e.Z = math.Atan2(-m[1], m[0])
			e.X = math.Atan2(-m[5], m[8])
		} else {
			e.Z = math.Atan2(m[3], m[4])
		}
	}
	return e
}

// MiddleAngle returns the angle on the order's middle axis, the one that
// hits ±90° at the gimbal singularity. The mapping is order-specific.
func (e Euler) MiddleAngle() float64 {
	switch e.Order {
	case OrderZXY:
		return e.X
	case OrderZYX:
		return e.Y
	case OrderXZY:
		return e.Z
	case OrderXYZ:
		return e.Y
	case OrderYZX:
		return e.Z
	case OrderYXZ:
		return e.X
	}
	return e.Y
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 {
	return r * 180 / math.Pi
}

func clamp1(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
