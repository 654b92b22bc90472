// Package mathutil builds the model, view and projection matrices used by the
// renderer. All functions are pure.
package mathutil

import "github.com/go-gl/mathgl/mgl32"

// ModelMatrix returns T(position) * Rx * Ry * Rz * S(scale). Angles are in
// degrees; the rotation order fixes entity orientation for the whole scene.
func ModelMatrix(position mgl32.Vec3, rx, ry, rz, scale float32) mgl32.Mat4 {
	return mgl32.Ident4().
		Mul4(mgl32.Translate3D(position[0], position[1], position[2])).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(rx))).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(ry))).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(rz))).
		Mul4(mgl32.Scale3D(scale, scale, scale))
}

// Viewer is the camera state a view matrix depends on.
type Viewer interface {
	Eye() mgl32.Vec3
	Orientation() (pitch, yaw float32)
}

// ViewMatrix returns the inverse of the camera transform. The camera is
// oriented by -yaw about Y and -pitch about X, so its inverse is
// Rx(pitch) * Ry(yaw) * T(-position). Roll is unused.
func ViewMatrix(v Viewer) mgl32.Mat4 {
	pos := v.Eye()
	pitch, yaw := v.Orientation()
	return mgl32.Ident4().
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(pitch))).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(yaw))).
		Mul4(mgl32.Translate3D(-pos[0], -pos[1], -pos[2]))
}

// ProjectionMatrix returns a perspective projection. fov is in degrees.
func ProjectionMatrix(fov, aspect, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(fov), aspect, near, far)
}
