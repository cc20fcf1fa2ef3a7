package instrument

// Role tags a layer by what it holds.
type Role int

const (
	RoleSource Role = iota // unscaled art sheet as loaded
	RoleCanvas             // size×size destination all layers are assembled into
	RoleDial               // dial face scaled to size×size
	RolePointer            // needle at native resolution
	RoleShadow             // needle shadow at native resolution
)

func (r Role) String() string {
	switch r {
	case RoleSource:
		return "source"
	case RoleCanvas:
		return "canvas"
	case RoleDial:
		return "dial"
	case RolePointer:
		return "pointer"
	case RoleShadow:
		return "shadow"
	default:
		return "unknown"
	}
}

// Layers are the images owned by one instrument. They are always rebuilt
// as a batch: everything is destroyed first, then recreated in Role order.
type Layers struct {
	Source  Image
	Canvas  Image
	Dial    Image
	Pointer Image
	Shadow  Image
}

// Each calls fn for every layer in Role order, including nil ones.
func (l *Layers) Each(fn func(Role, Image)) {
	fn(RoleSource, l.Source)
	fn(RoleCanvas, l.Canvas)
	fn(RoleDial, l.Dial)
	fn(RolePointer, l.Pointer)
	fn(RoleShadow, l.Shadow)
}

// Destroy disposes every layer and clears the set.
func (l *Layers) Destroy() {
	l.Each(func(_ Role, img Image) {
		if img != nil {
			img.Dispose()
		}
	})
	*l = Layers{}
}
