package mask

import (
	"fmt"

	"gocv.io/x/gocv"
)

// ToMat converts the mask to a single-channel 8-bit gocv.Mat. The caller
// owns the returned Mat and must Close it.
func (m *Mask) ToMat() (gocv.Mat, error) {
	mat, err := gocv.NewMatFromBytes(m.height, m.width, gocv.MatTypeCV8UC1, m.pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to wrap mask in Mat: %w", err)
	}
	return mat, nil
}

// FromMat converts a single-channel 8-bit Mat back into a Mask. Any
// non-zero pixel becomes Inside.
func FromMat(mat gocv.Mat) (*Mask, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("cannot convert empty Mat: %w", ErrDimensionMismatch)
	}
	return FromBytes(mat.Cols(), mat.Rows(), mat.ToBytes())
}
