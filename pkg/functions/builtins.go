package functions

import "sync"

var (
	builtinTable     Table
	builtinTableOnce sync.Once
)

// initBuiltins initializes the Bedrock math library.
func initBuiltins() {
	builtinTableOnce.Do(func() {
		sigs := []Signature{
			{Name: "math.abs", MinArgs: 1, MaxArgs: 1, Doc: "absolute value"},
			{Name: "math.acos", MinArgs: 1, MaxArgs: 1, Doc: "arccosine in degrees"},
			{Name: "math.asin", MinArgs: 1, MaxArgs: 1, Doc: "arcsine in degrees"},
			{Name: "math.atan", MinArgs: 1, MaxArgs: 1, Doc: "arctangent in degrees"},
			{Name: "math.atan2", MinArgs: 2, MaxArgs: 2, Doc: "arctangent of y/x in degrees"},
			{Name: "math.ceil", MinArgs: 1, MaxArgs: 1, Doc: "round up"},
			{Name: "math.clamp", MinArgs: 3, MaxArgs: 3, Doc: "clamp value between min and max"},
			{Name: "math.cos", MinArgs: 1, MaxArgs: 1, Doc: "cosine of degrees"},
			{Name: "math.die_roll", MinArgs: 3, MaxArgs: 3, Doc: "sum of num random values between low and high"},
			{Name: "math.die_roll_integer", MinArgs: 3, MaxArgs: 3, Doc: "sum of num random integers between low and high"},
			{Name: "math.exp", MinArgs: 1, MaxArgs: 1, Doc: "e to the power of value"},
			{Name: "math.floor", MinArgs: 1, MaxArgs: 1, Doc: "round down"},
			{Name: "math.hermite_blend", MinArgs: 1, MaxArgs: 1, Doc: "3t^2 - 2t^3"},
			{Name: "math.lerp", MinArgs: 3, MaxArgs: 3, Doc: "linear interpolation"},
			{Name: "math.lerprotate", MinArgs: 3, MaxArgs: 3, Doc: "shortest-path angle interpolation"},
			{Name: "math.ln", MinArgs: 1, MaxArgs: 1, Doc: "natural logarithm"},
			{Name: "math.max", MinArgs: 2, MaxArgs: 2, Doc: "larger of two values"},
			{Name: "math.min", MinArgs: 2, MaxArgs: 2, Doc: "smaller of two values"},
			{Name: "math.min_angle", MinArgs: 1, MaxArgs: 1, Doc: "angle wrapped to -180..180"},
			{Name: "math.mod", MinArgs: 2, MaxArgs: 2, Doc: "remainder of value / denominator"},
			{Name: "math.pi", MinArgs: 0, MaxArgs: 0, Doc: "the constant pi"},
			{Name: "math.pow", MinArgs: 2, MaxArgs: 2, Doc: "base raised to exponent"},
			{Name: "math.random", MinArgs: 2, MaxArgs: 2, Doc: "random value between low and high"},
			{Name: "math.random_integer", MinArgs: 2, MaxArgs: 2, Doc: "random integer between low and high"},
			{Name: "math.round", MinArgs: 1, MaxArgs: 1, Doc: "round to nearest integer"},
			{Name: "math.sin", MinArgs: 1, MaxArgs: 1, Doc: "sine of degrees"},
			{Name: "math.sqrt", MinArgs: 1, MaxArgs: 1, Doc: "square root"},
			{Name: "math.trunc", MinArgs: 1, MaxArgs: 1, Doc: "round towards zero"},

			// Added with the easing and interpolation helpers
			{Name: "math.copy_sign", MinArgs: 2, MaxArgs: 2, Since: "1.20.70", Doc: "value with the sign of sign"},
			{Name: "math.inverse_lerp", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "inverse of lerp"},
			{Name: "math.sign", MinArgs: 1, MaxArgs: 1, Since: "1.20.70", Doc: "1 or -1 by sign of value"},
			{Name: "math.ease_in_quad", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "quadratic ease in"},
			{Name: "math.ease_out_quad", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "quadratic ease out"},
			{Name: "math.ease_in_out_quad", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "quadratic ease in and out"},
			{Name: "math.ease_in_cubic", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "cubic ease in"},
			{Name: "math.ease_out_cubic", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "cubic ease out"},
			{Name: "math.ease_in_out_cubic", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "cubic ease in and out"},
			{Name: "math.ease_in_sine", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "sine ease in"},
			{Name: "math.ease_out_sine", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "sine ease out"},
			{Name: "math.ease_in_out_sine", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "sine ease in and out"},
			{Name: "math.ease_in_expo", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "exponential ease in"},
			{Name: "math.ease_out_expo", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "exponential ease out"},
			{Name: "math.ease_in_out_expo", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "exponential ease in and out"},
			{Name: "math.ease_in_back", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "overshooting ease in"},
			{Name: "math.ease_out_back", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "overshooting ease out"},
			{Name: "math.ease_in_out_back", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "overshooting ease in and out"},
			{Name: "math.ease_in_bounce", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "bouncing ease in"},
			{Name: "math.ease_out_bounce", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "bouncing ease out"},
			{Name: "math.ease_in_out_bounce", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "bouncing ease in and out"},
			{Name: "math.ease_in_elastic", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "elastic ease in"},
			{Name: "math.ease_out_elastic", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "elastic ease out"},
			{Name: "math.ease_in_out_elastic", MinArgs: 3, MaxArgs: 3, Since: "1.20.70", Doc: "elastic ease in and out"},
		}

		builtinTable = make(Table, len(sigs))
		for _, sig := range sigs {
			builtinTable[Normalize(sig.Name)] = sig
		}
	})
}

// Builtins returns a copy of the Bedrock math library table.
func Builtins() Table {
	initBuiltins()
	return builtinTable.Merge(nil)
}
