// Package gesture provides the shape-processing core of the Stroked engine:
// the gesture text codec, the preprocessing pipeline and the DTW matcher.
package gesture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ayusman/stroked/internal/geom"
)

// Definition represents a recorded gesture shape: an optional name and the
// raw point list. Definitions are stored in their text encoding, see
// ParseGesture and SerializeGesture.
type Definition struct {
	Name   string // empty when the gesture is unnamed
	Points []geom.Point
}

// ParseErrorKind identifies the specific way a gesture string failed to parse.
type ParseErrorKind int

const (
	// ParseErrEmptyInput means the input was empty or whitespace-only.
	ParseErrEmptyInput ParseErrorKind = iota
	// ParseErrEmptyName means a name prefix was present but empty ("  :1,2").
	ParseErrEmptyName
	// ParseErrEmptyPoint means a point segment between separators was empty.
	ParseErrEmptyPoint
	// ParseErrMissingCoordinate means a point segment lacked an x or y field.
	ParseErrMissingCoordinate
	// ParseErrExtraCoordinate means a point segment had more than two fields.
	ParseErrExtraCoordinate
	// ParseErrInvalidNumber means a coordinate field was not a valid number.
	ParseErrInvalidNumber
)

// String returns a stable machine-readable label for the error kind.
func (k ParseErrorKind) String() string {
	switch k {
	case ParseErrEmptyInput:
		return "empty_input"
	case ParseErrEmptyName:
		return "empty_name"
	case ParseErrEmptyPoint:
		return "empty_point"
	case ParseErrMissingCoordinate:
		return "missing_coordinate"
	case ParseErrExtraCoordinate:
		return "extra_coordinate"
	case ParseErrInvalidNumber:
		return "invalid_number"
	default:
		return "invalid"
	}
}

// ParseError describes a gesture text parse failure. Index and Coord point at
// the offending segment and coordinate slot so editor dialogs can highlight
// the failing token.
type ParseError struct {
	Kind  ParseErrorKind
	Index int    // point segment index, zero-based
	Coord int    // coordinate slot: 0 = x, 1 = y
	Value string // the rejected field, set for ParseErrInvalidNumber
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseErrEmptyInput:
		return "gesture text is empty"
	case ParseErrEmptyName:
		return "gesture name is empty"
	case ParseErrEmptyPoint:
		return fmt.Sprintf("point %d is empty", e.Index)
	case ParseErrMissingCoordinate:
		return fmt.Sprintf("point %d is missing coordinate %d", e.Index, e.Coord)
	case ParseErrExtraCoordinate:
		return fmt.Sprintf("point %d has extra coordinates", e.Index)
	case ParseErrInvalidNumber:
		return fmt.Sprintf("point %d coordinate %d is not a number: %q", e.Index, e.Coord, e.Value)
	default:
		return "invalid gesture text"
	}
}

// ParseGesture parses the compact text encoding of a gesture.
//
// Grammar: an optional "name:" prefix followed by "|"-separated "x,y" pairs.
// The name must be non-empty when the colon is present. Each point segment
// must have exactly two comma-separated numeric fields.
func ParseGesture(input string) (Definition, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Definition{}, &ParseError{Kind: ParseErrEmptyInput}
	}

	var name string
	coords := trimmed
	if prefix, rest, ok := strings.Cut(trimmed, ":"); ok {
		name = strings.TrimSpace(prefix)
		if name == "" {
			return Definition{}, &ParseError{Kind: ParseErrEmptyName}
		}
		coords = rest
	}

	points, err := parsePoints(coords)
	if err != nil {
		return Definition{}, err
	}

	return Definition{Name: name, Points: points}, nil
}

// SerializeGesture renders a definition back to its text encoding.
// It is the exact inverse of ParseGesture for valid inputs and never fails.
func SerializeGesture(def Definition) string {
	var b strings.Builder
	if def.Name != "" {
		b.WriteString(def.Name)
		b.WriteByte(':')
	}
	for i, p := range def.Points {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.FormatFloat(p.X, 'g', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Y, 'g', -1, 64))
	}
	return b.String()
}

func parsePoints(coords string) ([]geom.Point, error) {
	var points []geom.Point
	for index, segment := range strings.Split(coords, "|") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return nil, &ParseError{Kind: ParseErrEmptyPoint, Index: index}
		}

		parts := strings.Split(segment, ",")
		if len(parts) > 2 {
			return nil, &ParseError{Kind: ParseErrExtraCoordinate, Index: index}
		}
		if len(parts) < 2 {
			return nil, &ParseError{Kind: ParseErrMissingCoordinate, Index: index, Coord: 1}
		}

		xPart := strings.TrimSpace(parts[0])
		yPart := strings.TrimSpace(parts[1])
		if xPart == "" {
			return nil, &ParseError{Kind: ParseErrMissingCoordinate, Index: index, Coord: 0}
		}
		if yPart == "" {
			return nil, &ParseError{Kind: ParseErrMissingCoordinate, Index: index, Coord: 1}
		}

		x, err := strconv.ParseFloat(xPart, 64)
		if err != nil {
			return nil, &ParseError{Kind: ParseErrInvalidNumber, Index: index, Coord: 0, Value: xPart}
		}
		y, err := strconv.ParseFloat(yPart, 64)
		if err != nil {
			return nil, &ParseError{Kind: ParseErrInvalidNumber, Index: index, Coord: 1, Value: yPart}
		}

		points = append(points, geom.Point{X: x, Y: y})
	}

	if len(points) == 0 {
		return nil, &ParseError{Kind: ParseErrEmptyInput}
	}

	return points, nil
}
