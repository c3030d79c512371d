// Package interp provides the fractional-sample interpolators used by delay
// lines and the pitch shifter.
//
//   - [Linear2]:  2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite
//
// [Mode] selects between them at construction time.
package interp
