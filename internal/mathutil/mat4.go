package mathutil

// Mat4 is a 4×4 matrix stored row-major. Used for node world transforms.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 rotation and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// Rotation returns the upper-left 3×3 block.
func (m Mat4) Rotation() Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// RigidInverse inverts a rigid transform (orthonormal rotation + translation):
// R' = Rᵀ, t' = −Rᵀt. Not valid for scaled or sheared matrices.
func (m Mat4) RigidInverse() Mat4 {
	rt := m.Rotation().Transpose()
	t := rt.MulVec3(m.Translation()).Scale(-1)
	return FromMat3Translation(rt, t)
}

// NearEqual reports whether every element of a and b is within eps.
func (m Mat4) NearEqual(b Mat4, eps float64) bool {
	for i := 0; i < 16; i++ {
		d := m[i] - b[i]
		if d > eps || d < -eps {
			return false
		}
	}
	return true
}
