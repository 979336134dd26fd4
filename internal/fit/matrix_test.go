package fit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"seehuhn.de/go/geom/vec"
)

func TestAntisym_CrossProduct(t *testing.T) {
	us := []Vec3{{1, 2, 3}, {-0.5, 0, 4}, {0, 0, 0}, {7, -3, 0.25}}
	vs := []Vec3{{0, 1, 0}, {2, -1, 5}, {-3, 0.5, 1}}

	for _, u := range us {
		a := Antisym(u)
		for _, v := range vs {
			assert.Equal(t, u.Cross(v), a.MulVec(v), "u=%v v=%v", u, v)
		}
	}
}

func TestAntisym_IsAntisymmetric(t *testing.T) {
	a := Antisym(Vec3{1.5, -2, 0.75})
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, a[i*3+j], -a[j*3+i], "a[%d][%d]", i, j)
		}
	}
}

func TestVec3_Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	assert.Equal(t, Vec3{0, 0, 1}, x.Cross(y))
	assert.Equal(t, Vec3{0, 0, -1}, y.Cross(x))
	assert.Equal(t, Vec3{}, x.Cross(x))
}

func TestMat3_Apply(t *testing.T) {
	m := Mat3{2, 0, 1, 0, 2, -1, 0, 0, 1}
	assert.Equal(t, vec.Vec2{X: 7, Y: 3}, m.Apply(vec.Vec2{X: 3, Y: 2}))
	assert.Equal(t, vec.Vec2{X: 3, Y: 2}, Identity3.Apply(vec.Vec2{X: 3, Y: 2}))
}
