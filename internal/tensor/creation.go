package tensor

import (
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
// Panics on an invalid shape.
func Zeros(shape Shape) *Tensor {
	t, err := New(shape)
	if err != nil {
		panic(err)
	}
	return t
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full(Shape{3, 3}, 3.14)
func Full(shape Shape, value float32) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Uniform creates a tensor with values drawn uniformly from [-bound, bound].
//
// The generator is passed explicitly so weight initialization is reproducible
// for a fixed seed.
func Uniform(shape Shape, bound float64, rng *rand.Rand) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = float32((rng.Float64()*2.0 - 1.0) * bound)
	}
	return t
}

// Randn creates a tensor with values from a standard normal distribution.
// Uses the Box-Muller transform.
func Randn(shape Shape, rng *rand.Rand) *Tensor {
	t := Zeros(shape)
	data := t.data
	for i := 0; i < len(data); i += 2 {
		u1 := rng.Float64()
		u2 := rng.Float64()
		if u1 == 0 {
			u1 = math.SmallestNonzeroFloat64
		}
		r := math.Sqrt(-2.0 * math.Log(u1))
		data[i] = float32(r * math.Cos(2.0*math.Pi*u2))
		if i+1 < len(data) {
			data[i+1] = float32(r * math.Sin(2.0*math.Pi*u2))
		}
	}
	return t
}
