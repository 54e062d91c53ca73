package build

// Objects is the ordered list of object files produced by one build. It
// only grows, by one entry per successful compile.
type Objects struct {
	paths []string
}

func (o *Objects) add(path string) {
	o.paths = append(o.paths, path)
}

// Paths returns the object paths in compile order.
func (o *Objects) Paths() []string {
	return append([]string(nil), o.paths...)
}

// Len returns the number of objects.
func (o *Objects) Len() int {
	return len(o.paths)
}
