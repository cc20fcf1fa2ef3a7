package instrument

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
)

// ErrUnknownKind is returned for an instrument type that isn't built in.
var ErrUnknownKind = errors.New("unknown instrument kind")

// Kind identifies an instrument variant.
type Kind int

const (
	KindVSI Kind = iota // vertical speed indicator
	KindOil             // oil pressure gauge
)

func (k Kind) String() string {
	switch k {
	case KindVSI:
		return "vsi"
	case KindOil:
		return "oil"
	default:
		return "unknown"
	}
}

// ParseKind maps a settings-file kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vsi":
		return KindVSI, nil
	case "oil":
		return KindOil, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Degrees converts instrument degrees to the radians the rotation
// primitive takes.
const Degrees = math.Pi / 180

// Both sheets share the authoring layout: an 800×800 dial face with the
// pointer and its shadow in 800×100 strips underneath.
var (
	sheetDial    = image.Rect(0, 0, 800, 800)
	sheetPointer = image.Rect(0, 800, 800, 900)
	sheetShadow  = image.Rect(0, 900, 800, 1000)
)

var variants = map[Kind]Variant{
	KindVSI: {
		Name:          "VSI",
		Asset:         "vsi.bmp",
		ReferenceSize: 800,
		DialRegion:    sheetDial,
		PointerRegion: sheetPointer,
		ShadowRegion:  sheetShadow,
		SrcPivot:      Vec{400, 50},
		DstPivot:      Vec{400, 400},
		ShadowOffset:  15,
		AngleFactor:   Degrees,
		Var:           Var{Label: "Vertical Speed", Frequency: 4},
		Mapping:       Mapping{Scale: 1.0 / 10},
	},
	KindOil: {
		Name:          "Oil",
		Asset:         "oil.bmp",
		ReferenceSize: 800,
		DialRegion:    sheetDial,
		PointerRegion: sheetPointer,
		ShadowRegion:  sheetShadow,
		SrcPivot:      Vec{400, 50},
		DstPivot:      Vec{400, 400},
		ShadowOffset:  10,
		AngleFactor:   Degrees,
		// 0..100 psi sweeps the needle from -135° to +135°
		Var:     Var{Label: "Oil Pressure", Frequency: 0.5},
		Mapping: Mapping{Scale: 2.7, Offset: -135},
	},
}

// VariantFor returns the art layout and mapping of kind.
func VariantFor(kind Kind) (Variant, error) {
	s, ok := variants[kind]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	return s, nil
}

// New builds an instrument of the given kind. An empty name uses the
// kind's default name, which is also the key its settings are stored under.
func New(kind Kind, name string, ctx *Context, src Source, loader Loader, xPos, yPos, size int) (Instrument, error) {
	variant, err := VariantFor(kind)
	if err != nil {
		return nil, err
	}
	return NewDial(variant, name, ctx, src, loader, xPos, yPos, size), nil
}
