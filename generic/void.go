package generic

// Void is the zero-size value type, for sets and results that carry no value.
type Void = struct{}

func NewVoid() Void {
	return Void{}
}
